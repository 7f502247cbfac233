package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Section types. A section's type is fixed at creation and determines which
// work item fields are meaningful.
const (
	SectionTypeSquareNet   = "squareNet"
	SectionTypeDescription = "description"
)

// ValidSectionType reports whether t names a known section type.
func ValidSectionType(t string) bool {
	return t == SectionTypeSquareNet || t == SectionTypeDescription
}

// Number is a float64 that tolerates sloppy JSON input. Quoted numbers parse,
// and anything unparseable (including NaN and infinities) decodes to zero so
// a half-filled form never breaks totals.
type Number float64

// Float returns the underlying value.
func (n Number) Float() float64 { return float64(n) }

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Package is a named, reusable pricing template composed of ordered sections.
type Package struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Name      string    `gorm:"not null" json:"name"`
	Sections  []Section `gorm:"foreignKey:PackageID" json:"sections,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Section is one priced space within a package. Order is 1-based and
// contiguous across the package's sections.
type Section struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PackageID uint       `gorm:"not null;index" json:"packageId"`
	Name      string     `gorm:"not null" json:"name"`
	Type      string     `gorm:"not null" json:"type"`
	Order     int        `gorm:"column:sort_order;not null" json:"order"`
	Items     []WorkItem `gorm:"foreignKey:SectionID" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Normalize stamps every item with the section's id and type. Items arriving
// over the wire carry no variant of their own; the owning section decides it.
func (s *Section) Normalize() {
	for i := range s.Items {
		s.Items[i].SectionID = s.ID
		s.Items[i].Variant = s.Type
	}
}

// WorkItem is one priced line within a section. Variant mirrors the owning
// section's type; only the fields of that variant are meaningful, and only
// those are serialized.
type WorkItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	SectionID uint   `gorm:"not null;index" json:"-"`
	Variant   string `gorm:"not null" json:"-"`
	Order     int    `gorm:"column:sort_order;not null" json:"-"`

	// squareNet fields. SqFt and Total are derived, never authored.
	Item         string `json:"-"`
	Nos          Number `json:"-"`
	Width        Number `json:"-"`
	Length       Number `json:"-"`
	SqFt         Number `json:"-"`
	PricePerSqFt Number `json:"-"`
	Total        Number `json:"-"`

	// description fields.
	CarpentryWork string `json:"-"`
	Description   string `json:"-"`
	Size          string `json:"-"`
	Price         Number `json:"-"`
}

type squareNetJSON struct {
	ID           uint   `json:"id,omitempty"`
	Order        int    `json:"order"`
	Item         string `json:"item"`
	Nos          Number `json:"nos"`
	Width        Number `json:"width"`
	Length       Number `json:"length"`
	SqFt         Number `json:"sqFt"`
	PricePerSqFt Number `json:"pricePerSqFt"`
	Total        Number `json:"total"`
}

type descriptionJSON struct {
	ID            uint   `json:"id,omitempty"`
	Order         int    `json:"order"`
	CarpentryWork string `json:"carpentryWork"`
	Description   string `json:"description"`
	Size          string `json:"size"`
	Price         Number `json:"price"`
}

// MarshalJSON emits only the fields of the item's variant. The other
// variant's fields are absent from the payload, not null-filled.
func (w WorkItem) MarshalJSON() ([]byte, error) {
	if w.Variant == SectionTypeDescription {
		return json.Marshal(descriptionJSON{
			ID:            w.ID,
			Order:         w.Order,
			CarpentryWork: w.CarpentryWork,
			Description:   w.Description,
			Size:          w.Size,
			Price:         w.Price,
		})
	}
	return json.Marshal(squareNetJSON{
		ID:           w.ID,
		Order:        w.Order,
		Item:         w.Item,
		Nos:          w.Nos,
		Width:        w.Width,
		Length:       w.Length,
		SqFt:         w.SqFt,
		PricePerSqFt: w.PricePerSqFt,
		Total:        w.Total,
	})
}

// UnmarshalJSON accepts either variant's fields. The variant itself is not
// part of the payload; Section.Normalize assigns it from the owning section.
func (w *WorkItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		squareNetJSON
		CarpentryWork string `json:"carpentryWork"`
		Description   string `json:"description"`
		Size          string `json:"size"`
		Price         Number `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.ID = aux.ID
	w.Order = aux.Order
	w.Item = aux.Item
	w.Nos = aux.Nos
	w.Width = aux.Width
	w.Length = aux.Length
	w.SqFt = aux.SqFt
	w.PricePerSqFt = aux.PricePerSqFt
	w.Total = aux.Total
	w.CarpentryWork = aux.CarpentryWork
	w.Description = aux.Description
	w.Size = aux.Size
	w.Price = aux.Price
	return nil
}
