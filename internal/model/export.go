package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VariantsOption string

const (
	VariantsOptionDefault   VariantsOption = "default"
	VariantsOptionAll       VariantsOption = "all"
	VariantsOptionCheapest  VariantsOption = "cheapest"
	VariantsOptionExpensive VariantsOption = "expensive"
	VariantsOptionNone      VariantsOption = "none"
)

func (o VariantsOption) Validate() error {
	switch o {
	case VariantsOptionDefault, VariantsOptionAll, VariantsOptionCheapest, VariantsOptionExpensive, VariantsOptionNone:
		return nil
	default:
		return fmt.Errorf("unknown variants option: %s", o)
	}
}

type ExportScript string

const ExportScriptGenericCSV ExportScript = "generic_csv"

func (s ExportScript) Validate() error {
	if s != ExportScriptGenericCSV {
		return fmt.Errorf("unknown export script: %s", s)
	}
	return nil
}

type Export struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Position       int            `json:"position"`
	Script         ExportScript   `json:"script"`
	VariantsOption VariantsOption `json:"variants_option"`
	ProductIDs     []uuid.UUID    `json:"product_ids"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
