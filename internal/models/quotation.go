package models

import "time"

// Quotation is a frozen commercial proposal referencing one package and one
// client. Amount and discount are its own terms; they are not kept in sync
// with later edits to the referenced package. DiscountedPrice is derived as
// amount - discount and is intentionally not clamped at zero.
type Quotation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PackageID       uint      `gorm:"not null;index" json:"packageId"`
	Package         Package   `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	ClientID        uint      `gorm:"not null;index" json:"clientId"`
	Client          Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Amount          float64   `json:"amount"`
	Discount        float64   `json:"discount"`
	DiscountedPrice float64   `json:"discountedPrice"`
	Area            float64   `json:"area"` // total sq ft quoted, display only
	ValidFrom       time.Time `json:"validFrom"`
	ValidTo         time.Time `json:"validTo"`
	SalesPerson     string    `json:"salesPerson"`
	ProjectCode     string    `json:"projectCode"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
