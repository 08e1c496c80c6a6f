package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
	Register("tenants", SeedTenants)
	Register("catalog", SeedCatalog)
}

// SeedUsers creates the demo superuser and two tenant admins.
// Idempotent: existing emails are left alone.
func SeedUsers(db *gorm.DB) error {
	users := []struct {
		name      string
		email     string
		password  string
		superuser bool
	}{
		{"Admin", "admin@vitrine.local", "admin", true},
		{"Alice", "alice@phonestore.local", "secret", false},
		{"Bruno", "bruno@gadgetshop.local", "secret", false},
	}
	for _, u := range users {
		var count int64
		db.Model(&models.User{}).Where("email = ?", u.email).Count(&count)
		if count > 0 {
			continue
		}
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		if err := db.Create(&models.User{
			Name:      u.name,
			Email:     u.email,
			Password:  hash,
			Superuser: u.superuser,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedTenants creates two demo storefronts linked to their admins.
func SeedTenants(db *gorm.DB) error {
	tenants := []struct {
		name       string
		domain     string
		adminEmail string
	}{
		{"Phone Store", "https://phonestore.local", "alice@phonestore.local"},
		{"Gadget Shop", "https://gadgetshop.local", "bruno@gadgetshop.local"},
	}
	for _, t := range tenants {
		var count int64
		db.Model(&models.Tenant{}).Where("domain = ?", t.domain).Count(&count)
		if count > 0 {
			continue
		}
		var admin models.User
		if err := db.Where("email = ?", t.adminEmail).First(&admin).Error; err != nil {
			return err
		}
		if err := db.Create(&models.Tenant{
			Name:        t.name,
			Domain:      t.domain,
			Active:      true,
			AdminUserID: &admin.ID,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedCatalog fills both tenants with a small brand/category/article
// set so the API has something to show out of the box.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	db.Model(&models.Article{}).Count(&count)
	if count > 0 {
		return nil
	}

	var tenants []models.Tenant
	if err := db.Order("id ASC").Find(&tenants).Error; err != nil {
		return err
	}

	for _, tenant := range tenants {
		smartphone := models.Category{TenantID: tenant.ID, Name: "Smartphones"}
		laptop := models.Category{TenantID: tenant.ID, Name: "Ordinateurs portables"}
		if err := db.Create(&smartphone).Error; err != nil {
			return err
		}
		if err := db.Create(&laptop).Error; err != nil {
			return err
		}

		apple := models.Brand{TenantID: tenant.ID, Name: "Apple"}
		samsung := models.Brand{TenantID: tenant.ID, Name: "Samsung"}
		if err := db.Create(&apple).Error; err != nil {
			return err
		}
		if err := db.Create(&samsung).Error; err != nil {
			return err
		}

		ram8, ram12 := 8, 12
		gb128, gb256 := 128, 256
		articles := []models.Article{
			{
				TenantID:   tenant.ID,
				BrandID:    apple.ID,
				CategoryID: &smartphone.ID,
				Modele:     "iPhone 15",
				Prix:       decimal.NewFromInt(799),
				RAMGB:      &ram8,
				StockageGB: &gb128,
			},
			{
				TenantID:   tenant.ID,
				BrandID:    samsung.ID,
				CategoryID: &smartphone.ID,
				Modele:     "Galaxy S24",
				Prix:       decimal.NewFromInt(699),
				RAMGB:      &ram12,
				StockageGB: &gb256,
			},
			{
				TenantID:   tenant.ID,
				BrandID:    apple.ID,
				CategoryID: &laptop.ID,
				Modele:     "MacBook Air M3",
				Prix:       decimal.RequireFromString("1099.99"),
				RAMGB:      &ram8,
				StockageGB: &gb256,
			},
		}
		for i := range articles {
			if err := db.Create(&articles[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
