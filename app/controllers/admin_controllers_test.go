package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/auth"
	"github.com/vitrinehq/vitrine/pkg/database"
	"github.com/vitrinehq/vitrine/pkg/middleware"
	"github.com/vitrinehq/vitrine/pkg/router"
)

// adminFixture reuses the public API fixture and adds principals: one
// superuser and one admin per tenant.
type adminFixture struct {
	handler    http.Handler
	superToken string
	aliceToken string // admin of tenant A
	tenantA    models.Tenant
	tenantB    models.Tenant
}

func setupAdmin(t *testing.T) *adminFixture {
	t.Helper()
	setupAPI(t) // boots the database with two tenants and their catalogs

	db := database.DB

	super := models.User{Name: "root", Email: "root@x", Password: "h", Superuser: true}
	require.NoError(t, db.Create(&super).Error)
	alice := models.User{Name: "alice", Email: "alice@x", Password: "h"}
	require.NoError(t, db.Create(&alice).Error)

	f := &adminFixture{}
	require.NoError(t, db.Where("domain = ?", domainA).First(&f.tenantA).Error)
	require.NoError(t, db.Where("domain = ?", domainB).First(&f.tenantB).Error)
	require.NoError(t, db.Model(&f.tenantA).Update("admin_user_id", alice.ID).Error)

	var err error
	f.superToken, err = auth.GenerateToken(super.ID, true)
	require.NoError(t, err)
	f.aliceToken, err = auth.GenerateToken(alice.ID, false)
	require.NoError(t, err)

	r := router.New()
	admin := NewAdminController()
	tenants := NewTenantController()
	protected := r.Group("/admin", middleware.Auth, tenancy.ResolveFromPrincipal)
	protected.Get("/dashboard", "admin.dashboard", admin.Dashboard)
	protected.Get("/articles", "admin.articles.list", admin.ListArticles)
	protected.Post("/articles", "admin.articles.create", admin.CreateArticle)
	protected.Get("/marques", "admin.marques.list", admin.ListBrands)
	protected.Post("/marques", "admin.marques.create", admin.CreateBrand)
	elevated := protected.Group("/tenants", tenancy.RequireSuperuser)
	elevated.Get("", "admin.tenants.list", tenants.List)
	f.handler = r.Handler()
	return f
}

func doAdmin(t *testing.T, f *adminFixture, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAdminRequiresToken(t *testing.T) {
	f := setupAdmin(t)
	rec := doAdmin(t, f, http.MethodGet, "/admin/articles", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminListIsScopedToPrincipal(t *testing.T) {
	f := setupAdmin(t)

	rec := doAdmin(t, f, http.MethodGet, "/admin/articles", f.aliceToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, listItems(t, env), 2, "alice sees only tenant A articles")

	rec = doAdmin(t, f, http.MethodGet, "/admin/articles", f.superToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, listItems(t, env), 3, "superuser sees everything")
}

func TestAdminBrandListCarriesArticleCounts(t *testing.T) {
	f := setupAdmin(t)

	rec := doAdmin(t, f, http.MethodGet, "/admin/marques", f.aliceToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var brands []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &brands))
	require.Len(t, brands, 1, "alice sees only tenant A brands")
	assert.Equal(t, "Apple", brands[0]["name"])
	assert.EqualValues(t, 2, brands[0]["article_count"])
	assert.NotContains(t, brands[0], "tenant_id")

	rec = doAdmin(t, f, http.MethodGet, "/admin/marques", f.superToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &brands))
	require.Len(t, brands, 2)
	for _, b := range brands {
		assert.Contains(t, b, "tenant_id", "superuser rows carry the tenant")
	}
}

func TestAdminArticleListTenantColumn(t *testing.T) {
	f := setupAdmin(t)

	rec := doAdmin(t, f, http.MethodGet, "/admin/articles", f.superToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	items := listItems(t, env)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Contains(t, item, "tenant_id", "cross-tenant rows must be attributable")
	}

	rec = doAdmin(t, f, http.MethodGet, "/admin/articles", f.aliceToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	for _, item := range listItems(t, env) {
		assert.NotContains(t, item, "tenant_id")
	}
}

func TestCreateBrandStampsTenant(t *testing.T) {
	f := setupAdmin(t)

	// alice tries to smuggle tenant B's id; it must be ignored
	body := fmt.Sprintf(`{"name":"Orange","tenant_id":%d}`, f.tenantB.ID)
	rec := doAdmin(t, f, http.MethodPost, "/admin/marques", f.aliceToken,
		bytes.NewBufferString(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var brand models.Brand
	require.NoError(t, database.DB.Where("name = ?", "Orange").First(&brand).Error)
	assert.Equal(t, f.tenantA.ID, brand.TenantID)
	assert.NotContains(t, rec.Body.String(), "tenant_id", "echo hides the tenant from tenant admins")
}

func TestCreateArticleMultipart(t *testing.T) {
	f := setupAdmin(t)

	var brand models.Brand
	require.NoError(t, database.DB.Where("tenant_id = ? AND name = ?", f.tenantA.ID, "Apple").
		First(&brand).Error)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("modele", "iPad Pro"))
	require.NoError(t, mw.WriteField("prix", "1299.50"))
	require.NoError(t, mw.WriteField("brand_id", fmt.Sprint(brand.ID)))
	require.NoError(t, mw.WriteField("tenant_id", fmt.Sprint(f.tenantB.ID))) // ignored for alice
	require.NoError(t, mw.Close())

	rec := doAdmin(t, f, http.MethodPost, "/admin/articles", f.aliceToken, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var article models.Article
	require.NoError(t, database.DB.Where("modele = ?", "iPad Pro").First(&article).Error)
	assert.Equal(t, f.tenantA.ID, article.TenantID)
	assert.Equal(t, "1299.5", article.Prix.String())
	assert.NotContains(t, rec.Body.String(), "tenant_id", "echo hides the tenant from tenant admins")
}

func TestCreateArticleRejectsForeignBrand(t *testing.T) {
	f := setupAdmin(t)

	var foreign models.Brand
	require.NoError(t, database.DB.Where("tenant_id = ?", f.tenantB.ID).First(&foreign).Error)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("modele", "Galaxy Clone"))
	require.NoError(t, mw.WriteField("prix", "100"))
	require.NoError(t, mw.WriteField("brand_id", fmt.Sprint(foreign.ID)))
	require.NoError(t, mw.Close())

	rec := doAdmin(t, f, http.MethodPost, "/admin/articles", f.aliceToken, &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTenantManagementIsSuperuserOnly(t *testing.T) {
	f := setupAdmin(t)

	rec := doAdmin(t, f, http.MethodGet, "/admin/tenants", f.aliceToken, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doAdmin(t, f, http.MethodGet, "/admin/tenants", f.superToken, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaleSuperuserClaimCannotManageTenants(t *testing.T) {
	f := setupAdmin(t)

	// a token minted before the superuser flag was revoked still says
	// superuser; the database does not
	var alice models.User
	require.NoError(t, database.DB.Where("email = ?", "alice@x").First(&alice).Error)
	require.False(t, alice.Superuser)

	stale, err := auth.GenerateToken(alice.ID, true)
	require.NoError(t, err)

	rec := doAdmin(t, f, http.MethodGet, "/admin/tenants", stale, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardCounts(t *testing.T) {
	f := setupAdmin(t)

	rec := doAdmin(t, f, http.MethodGet, "/admin/dashboard", f.aliceToken, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data map[string]int64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, int64(2), env.Data["articles"])
	assert.Equal(t, int64(1), env.Data["brands"])
}
