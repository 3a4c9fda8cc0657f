package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherGroup struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Voucher struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	GroupID       uuid.UUID       `json:"group_id"`
	Kind          ValueType       `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	TaxID         *uuid.UUID      `json:"tax_id,omitempty"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	EffectiveFrom decimal.Decimal `json:"effective_from"`
	Active        bool            `json:"active"`
	UsedAmount    int             `json:"used_amount"`
	LastUsedDate  *time.Time      `json:"last_used_date,omitempty"`
	// Limit is the number of allowed uses; 0 means unlimited.
	Limit     int       `json:"limit"`
	CreatedAt time.Time `json:"created_at"`
}

// VoucherMessage explains why a voucher is or is not effective.
type VoucherMessage string

const (
	VoucherMessageOK           VoucherMessage = "ok"
	VoucherMessageNotFound     VoucherMessage = "not_found"
	VoucherMessageNotActive    VoucherMessage = "not_active"
	VoucherMessageExpired      VoucherMessage = "expired"
	VoucherMessageAlreadyUsed  VoucherMessage = "already_used"
	VoucherMessageBelowMinimum VoucherMessage = "below_minimum"
)

// VoucherOptions control generated voucher numbers.
type VoucherOptions struct {
	Prefix  string `json:"prefix"`
	Suffix  string `json:"suffix"`
	Length  int    `json:"length"`
	Letters string `json:"letters"`
}

var DefaultVoucherOptions = VoucherOptions{
	Length:  5,
	Letters: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
}
