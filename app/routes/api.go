package routes

import (
	"github.com/vitrinehq/vitrine/app/controllers"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/logger"
	"github.com/vitrinehq/vitrine/pkg/middleware"
	"github.com/vitrinehq/vitrine/pkg/router"
)

// Register mounts the public storefront API and the admin surface.
//
// The public API never authenticates: visibility is decided entirely
// by the caller's origin. The admin surface authenticates first, then
// resolves its scope from the principal.
func Register(r *router.Router) {
	catalog := controllers.NewCatalogController()
	authController := controllers.NewAuthController()
	admin := controllers.NewAdminController()
	tenants := controllers.NewTenantController()

	api := r.Group("/api", tenancy.ResolveFromOrigin)
	api.Get("/articles", "articles.list", catalog.List)
	api.Get("/articles/vedette", "articles.featured", catalog.Featured)
	api.Get("/articles/{id}", "articles.detail", catalog.Detail)
	api.Get("/recherche", "articles.search", catalog.Search)
	api.Get("/filtrer/{term}", "articles.filter", catalog.Filter)
	api.Get("/marques", "marques.list", catalog.Brands)
	api.Get("/categories", "categories.list", catalog.Categories)

	if gqlController, err := controllers.NewGraphQLController(); err != nil {
		logger.Error("graphql schema init failed", "error", err)
	} else {
		api.Post("/graphql", "graphql.query", gqlController.Query)
	}

	api.Post("/login", "auth.login", authController.Login)

	protected := r.Group("/admin", middleware.Auth, tenancy.ResolveFromPrincipal)
	protected.Get("/dashboard", "admin.dashboard", admin.Dashboard)

	protected.Get("/articles", "admin.articles.list", admin.ListArticles)
	protected.Post("/articles", "admin.articles.create", admin.CreateArticle)
	protected.Get("/articles/{id}", "admin.articles.detail", admin.GetArticle)
	protected.Put("/articles/{id}", "admin.articles.update", admin.UpdateArticle)
	protected.Delete("/articles/{id}", "admin.articles.delete", admin.DeleteArticle)

	protected.Get("/marques", "admin.marques.list", admin.ListBrands)
	protected.Post("/marques", "admin.marques.create", admin.CreateBrand)
	protected.Put("/marques/{id}", "admin.marques.update", admin.UpdateBrand)
	protected.Delete("/marques/{id}", "admin.marques.delete", admin.DeleteBrand)

	protected.Get("/categories", "admin.categories.list", admin.ListCategories)
	protected.Post("/categories", "admin.categories.create", admin.CreateCategory)
	protected.Put("/categories/{id}", "admin.categories.update", admin.UpdateCategory)
	protected.Delete("/categories/{id}", "admin.categories.delete", admin.DeleteCategory)

	elevated := protected.Group("/tenants", tenancy.RequireSuperuser)
	elevated.Get("", "admin.tenants.list", tenants.List)
	elevated.Post("", "admin.tenants.create", tenants.Create)
	elevated.Put("/{id}", "admin.tenants.update", tenants.Update)
	elevated.Delete("/{id}", "admin.tenants.delete", tenants.Delete)
}
