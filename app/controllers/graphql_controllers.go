package controllers

import (
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/vitrinehq/vitrine/app/repositories"
	"github.com/vitrinehq/vitrine/app/services"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/bind"
	"github.com/vitrinehq/vitrine/pkg/graphql"
	"github.com/vitrinehq/vitrine/pkg/response"
)

// GraphQLController exposes a read-only query surface over the
// catalog. It reuses the same origin-resolved scope as the REST API:
// the resolution travels in the request context and every resolver
// queries through it.
type GraphQLController struct {
	schema  gql.Schema
	catalog *services.CatalogService
}

func NewGraphQLController() (*GraphQLController, error) {
	c := &GraphQLController{
		catalog: services.NewCatalogService(),
	}

	brandType := gql.NewObject(gql.ObjectConfig{
		Name: "Brand",
		Fields: gql.Fields{
			"id":   &gql.Field{Type: gql.Int},
			"name": &gql.Field{Type: gql.String},
			"logo": &gql.Field{Type: gql.String},
		},
	})
	categoryType := gql.NewObject(gql.ObjectConfig{
		Name: "Category",
		Fields: gql.Fields{
			"id":   &gql.Field{Type: gql.Int},
			"name": &gql.Field{Type: gql.String},
		},
	})
	articleType := gql.NewObject(gql.ObjectConfig{
		Name: "Article",
		Fields: gql.Fields{
			"id":     &gql.Field{Type: gql.Int},
			"modele": &gql.Field{Type: gql.String},
			"prix": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(services.ArticleListView); ok {
						return v.Prix.String(), nil
					}
					return nil, nil
				},
			},
			"thumb": &gql.Field{Type: gql.String},
			"brand": &gql.Field{
				Type: brandType,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(services.ArticleListView); ok {
						return v.Brand, nil
					}
					return nil, nil
				},
			},
			"category": &gql.Field{
				Type: categoryType,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(services.ArticleListView); ok && v.Category != nil {
						return *v.Category, nil
					}
					return nil, nil
				},
			},
			"ramGb": &gql.Field{
				Type: gql.Int,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(services.ArticleListView); ok && v.RAMGB != nil {
						return *v.RAMGB, nil
					}
					return nil, nil
				},
			},
			"stockageGb": &gql.Field{
				Type: gql.Int,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if v, ok := p.Source.(services.ArticleListView); ok && v.StockageGB != nil {
						return *v.StockageGB, nil
					}
					return nil, nil
				},
			},
		},
	})

	rootQuery := gql.NewObject(gql.ObjectConfig{
		Name: "RootQuery",
		Fields: gql.Fields{
			"articles": &gql.Field{
				Type: gql.NewList(articleType),
				Args: gql.FieldConfigArgument{
					"marque":    &gql.ArgumentConfig{Type: gql.String},
					"categorie": &gql.ArgumentConfig{Type: gql.String},
					"q":         &gql.ArgumentConfig{Type: gql.String},
					"prixMin":   &gql.ArgumentConfig{Type: gql.String},
					"prixMax":   &gql.ArgumentConfig{Type: gql.String},
					"page":      &gql.ArgumentConfig{Type: gql.Int},
					"pageSize":  &gql.ArgumentConfig{Type: gql.Int},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					res := tenancy.FromCtx(p.Context)
					f := repositories.ArticleFilters{
						Marque:    stringArg(p, "marque"),
						Categorie: stringArg(p, "categorie"),
						Q:         stringArg(p, "q"),
						PrixMin:   stringArg(p, "prixMin"),
						PrixMax:   stringArg(p, "prixMax"),
						Page:      intArg(p, "page"),
						PerPage:   intArg(p, "pageSize"),
					}
					views, _, err := c.catalog.Search(res, f)
					return views, err
				},
			},
			"featured": &gql.Field{
				Type: gql.NewList(articleType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return c.catalog.Featured(tenancy.FromCtx(p.Context))
				},
			},
			"brands": &gql.Field{
				Type: gql.NewList(brandType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return repositories.NewBrandRepository().All(tenancy.FromCtx(p.Context))
				},
			},
			"categories": &gql.Field{
				Type: gql.NewList(categoryType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return repositories.NewCategoryRepository().All(tenancy.FromCtx(p.Context))
				},
			},
		},
	})

	schema, err := graphql.NewSchema(rootQuery)
	if err != nil {
		return nil, err
	}
	c.schema = schema
	return c, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query" validate:"required"`
	Variables map[string]interface{} `json:"variables"`
}

// Query is POST /api/graphql.
func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	var body graphqlRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	result := gql.Do(gql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        r.Context(),
	})
	response.Success(w, result)
}

func stringArg(p gql.ResolveParams, name string) string {
	if v, ok := p.Args[name].(string); ok {
		return v
	}
	return ""
}

func intArg(p gql.ResolveParams, name string) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return 0
}
