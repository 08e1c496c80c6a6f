package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitrinehq/vitrine/app/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Tenant{},
		&models.Category{}, &models.Brand{}, &models.Article{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name, domain string, active bool, adminID *uint) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Name: name, Domain: domain, Active: active, AdminUserID: adminID}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func TestResolveUser(t *testing.T) {
	db := setupDB(t)

	super := models.User{Name: "root", Email: "root@x", Password: "h", Superuser: true}
	require.NoError(t, db.Create(&super).Error)

	admin := models.User{Name: "a", Email: "a@x", Password: "h"}
	require.NoError(t, db.Create(&admin).Error)
	tenant := seedTenant(t, db, "Shop A", "https://a.example", true, &admin.ID)

	orphan := models.User{Name: "o", Email: "o@x", Password: "h"}
	require.NoError(t, db.Create(&orphan).Error)

	t.Run("superuser sees all tenants", func(t *testing.T) {
		res := ResolveUser(db, &super)
		assert.True(t, res.IsAll())
	})

	t.Run("linked admin resolves to own tenant", func(t *testing.T) {
		res := ResolveUser(db, &admin)
		assert.Equal(t, KindTenant, res.Kind)
		assert.Equal(t, tenant.ID, res.TenantID)
	})

	t.Run("user without tenant resolves to none", func(t *testing.T) {
		res := ResolveUser(db, &orphan)
		assert.True(t, res.IsNone())
	})

	t.Run("nil principal resolves to none", func(t *testing.T) {
		assert.True(t, ResolveUser(db, nil).IsNone())
	})
}

func TestResolveOrigin(t *testing.T) {
	db := setupDB(t)
	active := seedTenant(t, db, "Active", "https://shop.example.com", true, nil)
	seedTenant(t, db, "Dormant", "https://old.example.com", false, nil)

	t.Run("origin header matches active domain", func(t *testing.T) {
		res := ResolveOrigin(db, "https://shop.example.com", "")
		assert.Equal(t, KindTenant, res.Kind)
		assert.Equal(t, active.ID, res.TenantID)
	})

	t.Run("trailing slash is stripped", func(t *testing.T) {
		res := ResolveOrigin(db, "https://shop.example.com/", "")
		assert.Equal(t, active.ID, res.TenantID)
	})

	t.Run("referer fallback uses scheme and host only", func(t *testing.T) {
		res := ResolveOrigin(db, "", "https://shop.example.com/produits/42?ref=promo")
		assert.Equal(t, active.ID, res.TenantID)
	})

	t.Run("unknown origin resolves to none", func(t *testing.T) {
		assert.True(t, ResolveOrigin(db, "https://evil.example.com", "").IsNone())
	})

	t.Run("inactive tenant resolves to none", func(t *testing.T) {
		assert.True(t, ResolveOrigin(db, "https://old.example.com", "").IsNone())
	})

	t.Run("no headers resolves to none", func(t *testing.T) {
		assert.True(t, ResolveOrigin(db, "", "").IsNone())
	})
}

func TestNormalizeOrigin(t *testing.T) {
	cases := []struct {
		origin, referer, want string
	}{
		{"https://a.example", "", "https://a.example"},
		{"https://a.example/", "", "https://a.example"},
		{"", "https://a.example/page/1", "https://a.example"},
		{"", "http://a.example:8080/x", "http://a.example:8080"},
		{"", "not a url", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeOrigin(c.origin, c.referer), "origin=%q referer=%q", c.origin, c.referer)
	}
}

func TestScope(t *testing.T) {
	db := setupDB(t)
	a := seedTenant(t, db, "A", "https://a.example", true, nil)
	b := seedTenant(t, db, "B", "https://b.example", true, nil)

	for _, tenant := range []models.Tenant{a, b} {
		require.NoError(t, db.Create(&models.Category{TenantID: tenant.ID, Name: "Phones"}).Error)
	}

	count := func(r Resolution) int64 {
		var n int64
		require.NoError(t, db.Model(&models.Category{}).Scopes(Scope(r)).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(2), count(All()))
	assert.Equal(t, int64(1), count(One(a.ID)))
	assert.Equal(t, int64(0), count(None()), "unresolved tenant must see nothing")
}

func TestFromCtxDefaultsToNone(t *testing.T) {
	res := FromCtx(context.Background())
	assert.True(t, res.IsNone())
}
