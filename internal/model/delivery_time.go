package model

import (
	"fmt"
)

type DeliveryTimeUnit string

const (
	DeliveryTimeUnitHours  DeliveryTimeUnit = "hours"
	DeliveryTimeUnitDays   DeliveryTimeUnit = "days"
	DeliveryTimeUnitWeeks  DeliveryTimeUnit = "weeks"
	DeliveryTimeUnitMonths DeliveryTimeUnit = "months"
)

func (u DeliveryTimeUnit) Validate() error {
	switch u {
	case DeliveryTimeUnitHours, DeliveryTimeUnitDays, DeliveryTimeUnitWeeks, DeliveryTimeUnitMonths:
		return nil
	default:
		return fmt.Errorf("unknown delivery time unit: %s", u)
	}
}

func (u DeliveryTimeUnit) hours() int {
	switch u {
	case DeliveryTimeUnitHours:
		return 1
	case DeliveryTimeUnitWeeks:
		return 24 * 7
	case DeliveryTimeUnitMonths:
		return 24 * 30
	default:
		return 24
	}
}

type DeliveryTime struct {
	Min  int              `json:"min"`
	Max  int              `json:"max"`
	Unit DeliveryTimeUnit `json:"unit"`
}

func (d DeliveryTime) String() string {
	if d.Min == d.Max {
		return fmt.Sprintf("%d %s", d.Min, d.Unit)
	}
	return fmt.Sprintf("%d-%d %s", d.Min, d.Max, d.Unit)
}

// AsUnit converts the range into another unit, rounding up partial units.
func (d DeliveryTime) AsUnit(unit DeliveryTimeUnit) DeliveryTime {
	from, to := d.Unit.hours(), unit.hours()
	conv := func(v int) int {
		return (v*from + to - 1) / to
	}
	return DeliveryTime{Min: conv(d.Min), Max: conv(d.Max), Unit: unit}
}

// Add extends both ends of the range by other, expressed in d's unit.
func (d DeliveryTime) Add(other DeliveryTime) DeliveryTime {
	o := other.AsUnit(d.Unit)
	return DeliveryTime{Min: d.Min + o.Min, Max: d.Max + o.Max, Unit: d.Unit}
}
