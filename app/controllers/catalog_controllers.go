package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitrinehq/vitrine/app/repositories"
	"github.com/vitrinehq/vitrine/app/services"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/response"
)

// CatalogController serves the public read API. Every handler runs
// behind the origin-resolution middleware, so the scope in the context
// already encodes what this caller may see.
type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController() *CatalogController {
	return &CatalogController{catalog: services.NewCatalogService()}
}

// filtersFromQuery reads the catalog query parameters. All are
// optional here; /recherche/ adds its own q requirement.
func filtersFromQuery(r *http.Request) repositories.ArticleFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("page_size"))
	return repositories.ArticleFilters{
		Marque:    q.Get("marque"),
		Categorie: q.Get("categorie"),
		PrixMin:   q.Get("prix_min"),
		PrixMax:   q.Get("prix_max"),
		Q:         q.Get("q"),
		Ordering:  q.Get("ordering"),
		Page:      page,
		PerPage:   perPage,
	}
}

// List is GET /api/articles.
func (c *CatalogController) List(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, pagination, err := c.catalog.Search(res, filtersFromQuery(r))
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list articles")
		return
	}
	response.Paginated(w, views, pagination)
}

// Detail is GET /api/articles/{id}.
func (c *CatalogController) Detail(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid article id")
		return
	}
	view, err := c.catalog.Detail(res, uint(id))
	if err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, view)
}

// Featured is GET /api/articles/vedette, the newest-first shelf.
func (c *CatalogController) Featured(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, err := c.catalog.Featured(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load featured articles")
		return
	}
	response.Success(w, views)
}

// Search is GET /api/recherche. The q parameter is mandatory; its
// absence is a client error with a corrective hint.
func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	f := filtersFromQuery(r)
	if strings.TrimSpace(f.Q) == "" {
		response.BadRequestWithExample(w, `Le paramètre "q" est requis`, "/recherche/?q=iphone")
		return
	}
	views, pagination, err := c.catalog.Search(res, f)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "search failed")
		return
	}
	response.Paginated(w, views, pagination)
}

// Filter is GET /api/filtrer/{term}: a category shortcut. The terms
// all, tout and catalogue pass everything through; anything else is a
// category-name filter with underscores read as spaces.
func (c *CatalogController) Filter(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	term := chi.URLParam(r, "term")

	f := filtersFromQuery(r)
	switch strings.ToLower(term) {
	case "all", "tout", "catalogue":
		// no category restriction
	default:
		f.Categorie = strings.ReplaceAll(term, "_", " ")
	}

	views, pagination, err := c.catalog.Search(res, f)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "filter failed")
		return
	}
	response.Paginated(w, views, pagination)
}

// Brands is GET /api/marques.
func (c *CatalogController) Brands(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, err := c.catalog.Brands(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list brands")
		return
	}
	response.Success(w, views)
}

// Categories is GET /api/categories.
func (c *CatalogController) Categories(w http.ResponseWriter, r *http.Request) {
	res := tenancy.FromCtx(r.Context())
	views, err := c.catalog.Categories(res)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list categories")
		return
	}
	response.Success(w, views)
}
