package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID                    uuid.UUID  `json:"id"`
	ParentID              *uuid.UUID `json:"parent_id,omitempty"`
	Name                  string     `json:"name"`
	Slug                  string     `json:"slug"`
	Position              int        `json:"position"`
	Level                 int        `json:"level"`
	ExcludeFromNavigation bool       `json:"exclude_from_navigation"`
	ShowAllProducts       bool       `json:"show_all_products"`
	ShortDescription      string     `json:"short_description"`
	Description           string     `json:"description"`
	MetaTitle             string     `json:"meta_title"`
	MetaKeywords          string     `json:"meta_keywords"`
	MetaDescription       string     `json:"meta_description"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

const metaNamePlaceholder = "<name>"

// Meta returns the meta fields with the name placeholder substituted.
func (c Category) Meta() (title, keywords, description string) {
	replace := func(s string) string {
		return strings.ReplaceAll(s, metaNamePlaceholder, c.Name)
	}
	return replace(c.MetaTitle), replace(c.MetaKeywords), replace(c.MetaDescription)
}
