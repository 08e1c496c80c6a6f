package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/database"
)

type catalogFixture struct {
	db      *gorm.DB
	tenantA models.Tenant
	tenantB models.Tenant
	brandA  models.Brand
	brandB  models.Brand
}

func setupCatalog(t *testing.T) *catalogFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Tenant{},
		&models.Category{}, &models.Brand{}, &models.Article{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	useMemDisk(t)

	f := &catalogFixture{db: db}
	f.tenantA = models.Tenant{Name: "A", Domain: "https://a.example", Active: true}
	f.tenantB = models.Tenant{Name: "B", Domain: "https://b.example", Active: true}
	require.NoError(t, db.Create(&f.tenantA).Error)
	require.NoError(t, db.Create(&f.tenantB).Error)

	f.brandA = models.Brand{TenantID: f.tenantA.ID, Name: "Apple"}
	f.brandB = models.Brand{TenantID: f.tenantB.ID, Name: "Samsung"}
	require.NoError(t, db.Create(&f.brandA).Error)
	require.NoError(t, db.Create(&f.brandB).Error)

	return f
}

func TestSaveArticleStampsTenantFromScope(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		TenantID: f.tenantB.ID, // a forged tenant must be overwritten
		BrandID:  f.brandA.ID,
		Modele:   "iPhone 15",
		Prix:     decimal.NewFromInt(799),
	}
	err := svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, [3]*Upload{})
	require.NoError(t, err)
	assert.Equal(t, f.tenantA.ID, article.TenantID, "tenant comes from the scope, never from input")

	var stored models.Article
	require.NoError(t, f.db.First(&stored, article.ID).Error)
	assert.Equal(t, f.tenantA.ID, stored.TenantID)
}

func TestSaveArticleRejectsCrossTenantBrand(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandB.ID, // belongs to tenant B
		Modele:  "Galaxy S24",
		Prix:    decimal.NewFromInt(699),
	}
	err := svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, [3]*Upload{})
	assert.ErrorIs(t, err, ErrBrandTenantMismatch)
}

func TestSaveArticleRejectsCrossTenantCategory(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	catB := models.Category{TenantID: f.tenantB.ID, Name: "Tablettes"}
	require.NoError(t, f.db.Create(&catB).Error)

	article := models.Article{
		BrandID:    f.brandA.ID,
		CategoryID: &catB.ID,
		Modele:     "iPad Air",
		Prix:       decimal.NewFromInt(599),
	}
	err := svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, [3]*Upload{})
	assert.ErrorIs(t, err, ErrCategoryTenantMismatch)

	catA := models.Category{TenantID: f.tenantA.ID, Name: "Tablettes"}
	require.NoError(t, f.db.Create(&catA).Error)
	article.CategoryID = &catA.ID
	require.NoError(t, svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, [3]*Upload{}))
}

func TestSaveArticleSuperuserMustChooseTenant(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandA.ID,
		Modele:  "iPhone 15",
		Prix:    decimal.NewFromInt(799),
	}
	err := svc.SaveArticle(tenancy.All(), &article, [3]*Upload{})
	assert.ErrorIs(t, err, ErrNoTenant)

	article.TenantID = f.tenantA.ID
	require.NoError(t, svc.SaveArticle(tenancy.All(), &article, [3]*Upload{}))
}

func TestSaveArticleUnresolvedScopeFailsClosed(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandA.ID,
		Modele:  "iPhone 15",
		Prix:    decimal.NewFromInt(799),
	}
	err := svc.SaveArticle(tenancy.None(), &article, [3]*Upload{})
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestSaveArticleDerivesUploads(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandA.ID,
		Modele:  "iPhone 15",
		Prix:    decimal.NewFromInt(799),
	}
	uploads := [3]*Upload{
		{Name: "front.png", Data: alphaPNG(t, 800, 600)},
		nil,
		{Name: "back.png", Data: []byte("corrupt")},
	}
	require.NoError(t, svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, uploads))

	assert.Contains(t, article.Image, "_optimized.jpg")
	assert.Contains(t, article.Thumb, "_thumb.jpg")
	assert.Empty(t, article.Image2, "untouched slot stays empty")
	assert.NotEmpty(t, article.Image3, "corrupt upload still stores the raw asset")
	assert.Empty(t, article.Thumb3, "corrupt upload yields no thumbnail")
}

func TestSaveArticleWithoutUploadsKeepsSlots(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandA.ID,
		Modele:  "iPhone 15",
		Prix:    decimal.NewFromInt(799),
	}
	uploads := [3]*Upload{{Name: "front.png", Data: alphaPNG(t, 800, 600)}}
	require.NoError(t, svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, uploads))

	image, thumb := article.Image, article.Thumb
	article.Prix = decimal.NewFromInt(749)
	require.NoError(t, svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, [3]*Upload{}))

	assert.Equal(t, image, article.Image, "re-save without a new upload does not re-derive")
	assert.Equal(t, thumb, article.Thumb)
}

func TestDetailViewCollectsLocators(t *testing.T) {
	f := setupCatalog(t)
	svc := NewCatalogService()

	article := models.Article{
		BrandID: f.brandA.ID,
		Modele:  "iPhone 15",
		Prix:    decimal.NewFromInt(799),
	}
	uploads := [3]*Upload{{Name: "front.png", Data: alphaPNG(t, 800, 600)}}
	require.NoError(t, svc.SaveArticle(tenancy.One(f.tenantA.ID), &article, uploads))

	view, err := svc.Detail(tenancy.One(f.tenantA.ID), article.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", view.Modele)
	assert.Equal(t, "Apple", view.Brand.Name)
	require.Len(t, view.Images, 1)
	assert.Contains(t, view.Images[0], "http://assets.test/")
	require.Len(t, view.Thumbs, 1)

	_, err = svc.Detail(tenancy.One(f.tenantB.ID), article.ID)
	assert.Error(t, err, "another tenant cannot see the article")
}
