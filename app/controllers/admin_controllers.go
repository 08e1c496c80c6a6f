package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repositories"
	"github.com/vitrinehq/vitrine/app/services"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/bind"
	"github.com/vitrinehq/vitrine/pkg/response"
)

const maxUploadBytes = 32 << 20

// AdminController is the management surface. It runs behind the auth
// and principal-resolution middlewares; superusers see every tenant,
// tenant admins see only their own rows and never pick a tenant by
// hand.
type AdminController struct {
	catalog    *services.CatalogService
	articles   *repositories.ArticleRepository
	brands     *repositories.BrandRepository
	categories *repositories.CategoryRepository
}

func NewAdminController() *AdminController {
	return &AdminController{
		catalog:    services.NewCatalogService(),
		articles:   repositories.NewArticleRepository(),
		brands:     repositories.NewBrandRepository(),
		categories: repositories.NewCategoryRepository(),
	}
}

func urlID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	return uint(id), err
}

// ── dashboard ─────────────────────────────────────────────────────────────────

// Dashboard is GET /admin/dashboard: per-scope row counts.
func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	articles, err := c.articles.CountByTenant(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	brands, err := c.brands.CountByTenant(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	categories, err := c.categories.CountByTenant(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}
	response.Success(w, map[string]int64{
		"articles":   articles,
		"brands":     brands,
		"categories": categories,
	})
}

// ── articles ──────────────────────────────────────────────────────────────────

// ListArticles is GET /admin/articles, with the same filters as the
// public list. Superusers get admin-tier rows so a cross-tenant
// listing stays attributable; tenant admins never see the tenant
// column.
func (c *AdminController) ListArticles(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	if res.IsAll() {
		views, pagination, err := c.catalog.SearchAdmin(res, filtersFromQuery(r))
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "could not list articles")
			return
		}
		response.Paginated(w, views, pagination)
		return
	}
	views, pagination, err := c.catalog.Search(res, filtersFromQuery(r))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list articles")
		return
	}
	response.Paginated(w, views, pagination)
}

// GetArticle is GET /admin/articles/{id}.
func (c *AdminController) GetArticle(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid article id")
		return
	}
	if res.IsAll() {
		view, err := c.catalog.AdminDetail(res, id)
		if err != nil {
			response.NotFound(w)
			return
		}
		response.Success(w, view)
		return
	}
	// tenant admins get the detail tier: the tenant column stays hidden
	view, err := c.catalog.Detail(res, id)
	if err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, view)
}

// CreateArticle is POST /admin/articles (multipart). Image slots are
// derived synchronously before the row is persisted.
func (c *AdminController) CreateArticle(w http.ResponseWriter, r *http.Request) {
	c.saveArticle(w, r, nil)
}

// UpdateArticle is PUT /admin/articles/{id} (multipart). Slots without
// a new upload keep their stored derivatives untouched.
func (c *AdminController) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid article id")
		return
	}
	existing, err := c.articles.FindByID(res, id)
	if err != nil {
		response.NotFound(w)
		return
	}
	c.saveArticle(w, r, &existing)
}

func (c *AdminController) saveArticle(w http.ResponseWriter, r *http.Request, existing *models.Article) {
	res := tenancy.FromCtx(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	article := models.Article{}
	if existing != nil {
		article = *existing
	}

	if v := r.FormValue("modele"); v != "" || existing == nil {
		article.Modele = v
	}
	if v := r.FormValue("prix"); v != "" || existing == nil {
		prix, err := decimal.NewFromString(v)
		if err != nil {
			response.ValidationError(w, map[string]string{"prix": "must be a decimal number"})
			return
		}
		article.Prix = prix
	}
	if v := r.FormValue("brand_id"); v != "" || existing == nil {
		brandID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.ValidationError(w, map[string]string{"brand_id": "must be an id"})
			return
		}
		article.BrandID = uint(brandID)
	}
	if v := r.FormValue("category_id"); v != "" {
		categoryID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.ValidationError(w, map[string]string{"category_id": "must be an id"})
			return
		}
		id := uint(categoryID)
		article.CategoryID = &id
	}
	if v := r.FormValue("stockage_gb"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			article.StockageGB = &n
		}
	}
	if v := r.FormValue("ram_gb"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			article.RAMGB = &n
		}
	}
	if article.Modele == "" {
		response.ValidationError(w, map[string]string{"modele": "is required"})
		return
	}

	// only a superuser may address a tenant explicitly; for everyone
	// else the field does not exist and the scope decides
	if res.IsAll() {
		if v := r.FormValue("tenant_id"); v != "" {
			tenantID, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				response.ValidationError(w, map[string]string{"tenant_id": "must be an id"})
				return
			}
			article.TenantID = uint(tenantID)
		}
	}

	var uploads [3]*services.Upload
	for i, field := range [3]string{"image", "image2", "image3"} {
		up, err := formUpload(r, field)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "could not read upload "+field)
			return
		}
		uploads[i] = up
	}

	if err := c.catalog.SaveArticle(res, &article, uploads); err != nil {
		switch {
		case errors.Is(err, services.ErrBrandTenantMismatch):
			response.ValidationError(w, map[string]string{"brand_id": "brand belongs to another tenant"})
		case errors.Is(err, services.ErrCategoryTenantMismatch):
			response.ValidationError(w, map[string]string{"category_id": "category belongs to another tenant"})
		case errors.Is(err, services.ErrNoTenant):
			response.Forbidden(w)
		default:
			response.Error(w, http.StatusInternalServerError, "could not save article")
		}
		return
	}

	c.echoArticle(w, res, article.ID, existing == nil)
}

// echoArticle re-reads the saved row so the response carries the same
// tier as GetArticle, never the raw model.
func (c *AdminController) echoArticle(w http.ResponseWriter, res tenancy.Resolution, id uint, created bool) {
	write := response.Success
	if created {
		write = response.Created
	}
	if res.IsAll() {
		view, err := c.catalog.AdminDetail(res, id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "could not load saved article")
			return
		}
		write(w, view)
		return
	}
	view, err := c.catalog.Detail(res, id)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load saved article")
		return
	}
	write(w, view)
}

// DeleteArticle is DELETE /admin/articles/{id}.
func (c *AdminController) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid article id")
		return
	}
	if err := c.catalog.DeleteArticle(res, id); err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, map[string]uint{"deleted": id})
}

// formUpload reads one optional file field into memory. A missing
// field is not an error; the slot simply stays as it was.
func formUpload(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &services.Upload{Name: header.Filename, Data: data}, nil
}

// ── brands ────────────────────────────────────────────────────────────────────

type brandRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Logo     string `json:"logo" validate:"nullable,max=500"`
	TenantID uint   `json:"tenant_id"` // superusers only; ignored otherwise
}

// ListBrands is GET /admin/marques.
func (c *AdminController) ListBrands(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, err := c.catalog.AdminBrands(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list brands")
		return
	}
	response.Success(w, views)
}

// CreateBrand is POST /admin/marques.
func (c *AdminController) CreateBrand(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	var body brandRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	brand := models.Brand{Name: body.Name, Logo: body.Logo}
	switch {
	case res.Kind == tenancy.KindTenant:
		brand.TenantID = res.TenantID
	case res.IsAll() && body.TenantID != 0:
		brand.TenantID = body.TenantID
	default:
		response.Forbidden(w)
		return
	}

	if err := c.brands.Create(&brand); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create brand")
		return
	}
	response.Created(w, brandEcho(res, brand, 0))
}

// brandEcho shapes a saved brand like the admin list rows; the tenant
// column shows for superusers only.
func brandEcho(res tenancy.Resolution, brand models.Brand, count int64) services.BrandAdminView {
	v := services.BrandAdminView{BrandView: services.NewBrandView(brand), ArticleCount: count}
	if res.IsAll() {
		v.TenantID = &brand.TenantID
	}
	return v
}

func categoryEcho(res tenancy.Resolution, category models.Category, count int64) services.CategoryAdminView {
	v := services.CategoryAdminView{CategoryView: services.NewCategoryView(category), ArticleCount: count}
	if res.IsAll() {
		v.TenantID = &category.TenantID
	}
	return v
}

// UpdateBrand is PUT /admin/marques/{id}.
func (c *AdminController) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid brand id")
		return
	}
	brand, err := c.brands.FindByID(res, id)
	if err != nil {
		response.NotFound(w)
		return
	}

	var body brandRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}
	brand.Name = body.Name
	brand.Logo = body.Logo

	if err := c.brands.Update(&brand); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update brand")
		return
	}
	count, err := c.brands.ArticleCount(brand.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update brand")
		return
	}
	response.Success(w, brandEcho(res, brand, count))
}

// DeleteBrand is DELETE /admin/marques/{id}.
func (c *AdminController) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid brand id")
		return
	}
	if err := c.brands.Delete(res, id); err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, map[string]uint{"deleted": id})
}

// ── categories ────────────────────────────────────────────────────────────────

type categoryRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	TenantID uint   `json:"tenant_id"` // superusers only; ignored otherwise
}

// ListCategories is GET /admin/categories.
func (c *AdminController) ListCategories(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, err := c.catalog.AdminCategories(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list categories")
		return
	}
	response.Success(w, views)
}

// CreateCategory is POST /admin/categories.
func (c *AdminController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	var body categoryRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	category := models.Category{Name: body.Name}
	switch {
	case res.Kind == tenancy.KindTenant:
		category.TenantID = res.TenantID
	case res.IsAll() && body.TenantID != 0:
		category.TenantID = body.TenantID
	default:
		response.Forbidden(w)
		return
	}

	if err := c.categories.Create(&category); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create category")
		return
	}
	response.Created(w, categoryEcho(res, category, 0))
}

// UpdateCategory is PUT /admin/categories/{id}.
func (c *AdminController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}
	category, err := c.categories.FindByID(res, id)
	if err != nil {
		response.NotFound(w)
		return
	}

	var body categoryRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}
	category.Name = body.Name

	if err := c.categories.Update(&category); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update category")
		return
	}
	count, err := c.categories.ArticleCount(category.ID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update category")
		return
	}
	response.Success(w, categoryEcho(res, category, count))
}

// DeleteCategory is DELETE /admin/categories/{id}.
func (c *AdminController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := c.categories.Delete(res, id); err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, map[string]uint{"deleted": id})
}
