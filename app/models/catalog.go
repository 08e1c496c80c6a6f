package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups articles within one tenant.
type Category struct {
	gorm.Model
	TenantID uint   `gorm:"not null;index;uniqueIndex:uniq_category_tenant_name" json:"-"`
	Tenant   Tenant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name     string `gorm:"size:255;not null;uniqueIndex:uniq_category_tenant_name" json:"name"`
}

// Brand belongs to exactly one tenant.
type Brand struct {
	gorm.Model
	TenantID uint   `gorm:"not null;index;uniqueIndex:uniq_brand_tenant_name" json:"-"`
	Tenant   Tenant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name     string `gorm:"size:255;not null;uniqueIndex:uniq_brand_tenant_name" json:"name"`
	Logo     string `gorm:"size:500" json:"logo"` // storage path or CDN reference, empty = none
}

// Article is a product. It carries up to three original image slots and
// the matching derived thumbnail slots; an empty string means the slot
// is unused (or, for thumbnails, that derivation failed or never ran).
type Article struct {
	gorm.Model
	TenantID   uint            `gorm:"not null;index" json:"-"`
	Tenant     Tenant          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	BrandID    uint            `gorm:"not null;index" json:"brand_id"`
	Brand      Brand           `gorm:"constraint:OnDelete:CASCADE" json:"brand"`
	CategoryID *uint           `gorm:"index" json:"category_id,omitempty"`
	Category   *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Modele     string          `gorm:"size:255;not null;index" json:"modele"`
	Prix       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"prix"`
	StockageGB *int            `json:"stockage_gb,omitempty"`
	RAMGB      *int            `json:"ram_gb,omitempty"`

	Image  string `gorm:"size:500" json:"image"`
	Image2 string `gorm:"size:500" json:"image2"`
	Image3 string `gorm:"size:500" json:"image3"`
	Thumb  string `gorm:"size:500" json:"thumb"`
	Thumb2 string `gorm:"size:500" json:"thumb2"`
	Thumb3 string `gorm:"size:500" json:"thumb3"`
}

// ImageSlot pairs one original image field with its thumbnail field so
// the derivation pipeline can iterate the three slots uniformly.
type ImageSlot struct {
	Image *string
	Thumb *string
}

// Slots returns pointers into the article's three image slot pairs.
func (a *Article) Slots() [3]ImageSlot {
	return [3]ImageSlot{
		{Image: &a.Image, Thumb: &a.Thumb},
		{Image: &a.Image2, Thumb: &a.Thumb2},
		{Image: &a.Image3, Thumb: &a.Thumb3},
	}
}
