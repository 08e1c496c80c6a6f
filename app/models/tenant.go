package models

import "gorm.io/gorm"

// Tenant is one isolated storefront. Every catalog row hangs off a
// tenant, and the public API resolves the tenant from the request's
// origin domain.
type Tenant struct {
	gorm.Model
	Name        string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Domain      string `gorm:"size:255;not null;uniqueIndex" json:"domain"` // full origin URL, e.g. https://shop.example.com
	Active      bool   `gorm:"not null;default:true" json:"active"`
	AdminUserID *uint  `gorm:"uniqueIndex" json:"admin_user_id,omitempty"`
	AdminUser   *User  `gorm:"foreignKey:AdminUserID" json:"-"`
}

// User is an admin principal. A non-superuser manages at most one
// tenant, through the tenant's AdminUserID link.
type User struct {
	gorm.Model
	Name      string `gorm:"size:255;not null" json:"name"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Superuser bool   `gorm:"not null;default:false" json:"superuser"`
}

// IsElevated reports whether the user sees across tenant boundaries.
func (u *User) IsElevated() bool { return u.Superuser }
