package migrations

import (
	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000001_create_tenants_table", &CreateTenantsTable{})
	migration.Register("20260301000002_create_categories_table", &CreateCategoriesTable{})
	migration.Register("20260301000003_create_brands_table", &CreateBrandsTable{})
	migration.Register("20260301000004_create_articles_table", &CreateArticlesTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: tenants --------

type CreateTenantsTable struct{}

func (m *CreateTenantsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Tenant{})
}

func (m *CreateTenantsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("tenants")
}

// -------- 0003: categories --------

type CreateCategoriesTable struct{}

func (m *CreateCategoriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{})
}

func (m *CreateCategoriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

// -------- 0004: brands --------

type CreateBrandsTable struct{}

func (m *CreateBrandsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Brand{})
}

func (m *CreateBrandsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("brands")
}

// -------- 0005: articles --------

type CreateArticlesTable struct{}

func (m *CreateArticlesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Article{})
}

func (m *CreateArticlesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("articles")
}
