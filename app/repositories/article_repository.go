package repositories

import (
	"strings"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

const (
	// DefaultPageSize mirrors the public catalog page length.
	DefaultPageSize = 12
	// MaxPageSize caps caller-supplied page_size.
	MaxPageSize = 50
	// FeaturedCount is the size of the featured shelf.
	FeaturedCount = 8
)

// ArticleFilters carries the caller-supplied query parameters. All
// fields are untrusted strings straight from the URL.
type ArticleFilters struct {
	Marque    string // exact brand name, case-insensitive
	Categorie string // category name substring, case-insensitive
	PrixMin   string
	PrixMax   string
	Q         string // free text over modele, brand name, category name
	Ordering  string // prix | date | modele, optionally "-" prefixed
	Page      int
	PerPage   int
}

// ArticleRepository handles database operations for Article.
type ArticleRepository struct{}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{}
}

// scoped starts an article query restricted to the resolution, with
// the relations the presentation tiers need.
func (r *ArticleRepository) scoped(res tenancy.Resolution) *orm.Query {
	return orm.DB().
		Model(&models.Article{}).
		Preload("Brand").
		Preload("Category").
		Scopes(tenancy.ScopeColumn(res, "articles.tenant_id"))
}

// Search composes the filter chain in a fixed order: tenant scope,
// brand, category, price range, free text, ordering, pagination.
func (r *ArticleRepository) Search(res tenancy.Resolution, f ArticleFilters) ([]models.Article, orm.Pagination, error) {
	q := r.scoped(res)

	needsBrand := f.Marque != "" || f.Q != ""
	needsCategory := f.Categorie != "" || f.Q != ""
	if needsBrand {
		q = q.Joins("LEFT JOIN brands ON brands.id = articles.brand_id")
	}
	if needsCategory {
		q = q.Joins("LEFT JOIN categories ON categories.id = articles.category_id")
	}

	if f.Marque != "" {
		q = q.Where("LOWER(brands.name) = LOWER(?)", f.Marque)
	}
	if f.Categorie != "" {
		q = q.Where("LOWER(categories.name) LIKE LOWER(?)", "%"+f.Categorie+"%")
	}
	if f.PrixMin != "" {
		q = q.Where("articles.prix >= ?", f.PrixMin)
	}
	if f.PrixMax != "" {
		q = q.Where("articles.prix <= ?", f.PrixMax)
	}
	if f.Q != "" {
		// brand and category join one-to-one from the article side, so
		// the OR over joined columns cannot duplicate article rows
		needle := "%" + f.Q + "%"
		q = q.Where(
			"LOWER(articles.modele) LIKE LOWER(?) OR LOWER(brands.name) LIKE LOWER(?) OR LOWER(categories.name) LIKE LOWER(?)",
			needle, needle, needle,
		)
	}

	q = q.Order(orderClause(f.Ordering))

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	var articles []models.Article
	pagination, err := q.GetWithPagination(&articles, page, perPage)
	return articles, pagination, err
}

// Featured returns the newest articles for the storefront shelf.
func (r *ArticleRepository) Featured(res tenancy.Resolution) ([]models.Article, error) {
	var articles []models.Article
	err := r.scoped(res).
		Order("articles.created_at DESC").
		Limit(FeaturedCount).
		Get(&articles)
	return articles, err
}

// FindByID fetches one article within the resolution's scope.
func (r *ArticleRepository) FindByID(res tenancy.Resolution, id uint) (models.Article, error) {
	var article models.Article
	err := r.scoped(res).Where("articles.id = ?", id).First(&article)
	return article, err
}

func (r *ArticleRepository) Create(article *models.Article) error {
	return orm.DB().Create(article)
}

func (r *ArticleRepository) Update(article *models.Article) error {
	return orm.DB().Save(article)
}

func (r *ArticleRepository) Delete(res tenancy.Resolution, id uint) error {
	article, err := r.FindByID(res, id)
	if err != nil {
		return err
	}
	return orm.DB().Delete(&article)
}

// CountByTenant is used by the admin dashboard.
func (r *ArticleRepository) CountByTenant(res tenancy.Resolution) (int64, error) {
	var n int64
	err := orm.DB().
		Model(&models.Article{}).
		Scopes(tenancy.Scope(res)).
		Count(&n)
	return n, err
}

// orderClause whitelists the ordering parameter. Anything it does not
// recognise falls back to newest-first.
func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")

	var column string
	switch key {
	case "prix":
		column = "articles.prix"
	case "date", "date_ajout":
		column = "articles.created_at"
	case "modele":
		column = "articles.modele"
	default:
		return "articles.created_at DESC"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
