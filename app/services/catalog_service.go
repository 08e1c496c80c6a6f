package services

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repositories"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/cache"
	"github.com/vitrinehq/vitrine/pkg/logger"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

var (
	// ErrBrandTenantMismatch rejects an article whose brand belongs to
	// a different tenant.
	ErrBrandTenantMismatch = errors.New("brand belongs to another tenant")
	// ErrCategoryTenantMismatch rejects an article whose category
	// belongs to another tenant.
	ErrCategoryTenantMismatch = errors.New("category belongs to another tenant")
	// ErrNoTenant rejects a write by a principal with no resolved
	// tenant and no explicit tenant choice.
	ErrNoTenant = errors.New("no tenant resolved for write")
)

const featuredTTL = 5 * time.Minute

// Upload is one new original image for a slot. A nil Upload leaves
// the slot untouched.
type Upload struct {
	Name string // client-supplied filename, used for the extension
	Data []byte
}

// ── presentation tiers ────────────────────────────────────────────────────────

// BrandRef and CategoryRef are the embedded relation shapes.
type BrandRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ArticleListView is the list tier.
type ArticleListView struct {
	ID         uint            `json:"id"`
	Modele     string          `json:"modele"`
	Brand      BrandRef        `json:"brand"`
	Category   *CategoryRef    `json:"category,omitempty"`
	Thumb      string          `json:"thumb"`
	Prix       decimal.Decimal `json:"prix"`
	RAMGB      *int            `json:"ram_gb,omitempty"`
	StockageGB *int            `json:"stockage_gb,omitempty"`
}

// ArticleDetailView adds every locator and the timestamps.
type ArticleDetailView struct {
	ArticleListView
	Images    []string  `json:"images"`
	Thumbs    []string  `json:"thumbs"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleAdminView adds the tenant, for superusers only.
type ArticleAdminView struct {
	ArticleDetailView
	TenantID uint `json:"tenant_id"`
}

// BrandView and CategoryView are the reference listings. The admin
// variants add the article count, and the tenant column for superusers
// only.
type BrandView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type CategoryView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type BrandAdminView struct {
	BrandView
	TenantID     *uint `json:"tenant_id,omitempty"`
	ArticleCount int64 `json:"article_count"`
}

type CategoryAdminView struct {
	CategoryView
	TenantID     *uint `json:"tenant_id,omitempty"`
	ArticleCount int64 `json:"article_count"`
}

// NewBrandView shapes a brand row for output.
func NewBrandView(b models.Brand) BrandView {
	return BrandView{ID: b.ID, Name: b.Name, Logo: b.Logo}
}

// NewCategoryView shapes a category row for output.
func NewCategoryView(c models.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name}
}

// CatalogService composes the isolation scope with caller filters and
// shapes the output tiers.
type CatalogService struct {
	articles   *repositories.ArticleRepository
	brands     *repositories.BrandRepository
	categories *repositories.CategoryRepository
	deriver    Deriver
}

func NewCatalogService() *CatalogService {
	return &CatalogService{
		articles:   repositories.NewArticleRepository(),
		brands:     repositories.NewBrandRepository(),
		categories: repositories.NewCategoryRepository(),
		deriver:    NewDeriver(),
	}
}

// Search runs the filtered, paginated article query.
func (s *CatalogService) Search(res tenancy.Resolution, f repositories.ArticleFilters) ([]ArticleListView, orm.Pagination, error) {
	articles, pagination, err := s.articles.Search(res, f)
	if err != nil {
		return nil, pagination, err
	}
	views := make([]ArticleListView, len(articles))
	for i := range articles {
		views[i] = s.listView(&articles[i])
	}
	return views, pagination, nil
}

// SearchAdmin is Search with admin-tier rows, so a cross-tenant
// listing shows which tenant each row belongs to.
func (s *CatalogService) SearchAdmin(res tenancy.Resolution, f repositories.ArticleFilters) ([]ArticleAdminView, orm.Pagination, error) {
	articles, pagination, err := s.articles.Search(res, f)
	if err != nil {
		return nil, pagination, err
	}
	views := make([]ArticleAdminView, len(articles))
	for i := range articles {
		views[i] = ArticleAdminView{
			ArticleDetailView: s.detailView(&articles[i]),
			TenantID:          articles[i].TenantID,
		}
	}
	return views, pagination, nil
}

// Brands lists the brands visible to the scope, public shape.
func (s *CatalogService) Brands(res tenancy.Resolution) ([]BrandView, error) {
	brands, err := s.brands.All(res)
	if err != nil {
		return nil, err
	}
	views := make([]BrandView, len(brands))
	for i, b := range brands {
		views[i] = NewBrandView(b)
	}
	return views, nil
}

// Categories lists the categories visible to the scope, public shape.
func (s *CatalogService) Categories(res tenancy.Resolution) ([]CategoryView, error) {
	categories, err := s.categories.All(res)
	if err != nil {
		return nil, err
	}
	views := make([]CategoryView, len(categories))
	for i, c := range categories {
		views[i] = NewCategoryView(c)
	}
	return views, nil
}

// AdminBrands adds the article counts, and the tenant column when the
// scope spans all tenants.
func (s *CatalogService) AdminBrands(res tenancy.Resolution) ([]BrandAdminView, error) {
	rows, err := s.brands.AllWithCounts(res)
	if err != nil {
		return nil, err
	}
	views := make([]BrandAdminView, len(rows))
	for i, row := range rows {
		views[i] = BrandAdminView{
			BrandView:    NewBrandView(row.Brand),
			ArticleCount: row.ArticleCount,
		}
		if res.IsAll() {
			id := row.TenantID
			views[i].TenantID = &id
		}
	}
	return views, nil
}

// AdminCategories mirrors AdminBrands.
func (s *CatalogService) AdminCategories(res tenancy.Resolution) ([]CategoryAdminView, error) {
	rows, err := s.categories.AllWithCounts(res)
	if err != nil {
		return nil, err
	}
	views := make([]CategoryAdminView, len(rows))
	for i, row := range rows {
		views[i] = CategoryAdminView{
			CategoryView: NewCategoryView(row.Category),
			ArticleCount: row.ArticleCount,
		}
		if res.IsAll() {
			id := row.TenantID
			views[i].TenantID = &id
		}
	}
	return views, nil
}

// Featured returns the newest articles, cached per tenant.
func (s *CatalogService) Featured(res tenancy.Resolution) ([]ArticleListView, error) {
	key := featuredCacheKey(res)
	var cached []ArticleListView
	if key != "" && cache.Get(key, &cached) {
		return cached, nil
	}

	articles, err := s.articles.Featured(res)
	if err != nil {
		return nil, err
	}
	views := make([]ArticleListView, len(articles))
	for i := range articles {
		views[i] = s.listView(&articles[i])
	}
	if key != "" {
		if err := cache.Set(key, views, featuredTTL); err != nil {
			logger.Warn("featured cache set failed", "key", key, "error", err)
		}
	}
	return views, nil
}

// Detail fetches one article inside the scope.
func (s *CatalogService) Detail(res tenancy.Resolution, id uint) (ArticleDetailView, error) {
	article, err := s.articles.FindByID(res, id)
	if err != nil {
		return ArticleDetailView{}, err
	}
	return s.detailView(&article), nil
}

// AdminDetail is Detail plus the tenant column.
func (s *CatalogService) AdminDetail(res tenancy.Resolution, id uint) (ArticleAdminView, error) {
	article, err := s.articles.FindByID(res, id)
	if err != nil {
		return ArticleAdminView{}, err
	}
	return ArticleAdminView{
		ArticleDetailView: s.detailView(&article),
		TenantID:          article.TenantID,
	}, nil
}

// ── write path ────────────────────────────────────────────────────────────────

// SaveArticle stamps the tenant, checks the brand relation, derives
// images for any slot with a new upload, and persists. Image failures
// degrade inside the deriver; they never abort the save.
func (s *CatalogService) SaveArticle(res tenancy.Resolution, article *models.Article, uploads [3]*Upload) error {
	if err := s.stampTenant(res, article); err != nil {
		return err
	}

	// the brand must be visible within the same tenant scope the
	// article is being written into
	brand, err := s.brands.FindByID(tenancy.One(article.TenantID), article.BrandID)
	if err != nil || brand.TenantID != article.TenantID {
		return ErrBrandTenantMismatch
	}
	if article.CategoryID != nil {
		cat, err := s.categories.FindByID(tenancy.One(article.TenantID), *article.CategoryID)
		if err != nil || cat.TenantID != article.TenantID {
			return ErrCategoryTenantMismatch
		}
	}

	slots := article.Slots()
	for i, up := range uploads {
		if up == nil || len(up.Data) == 0 {
			continue
		}
		slotPath := articleAssetPath(article.TenantID, i, up.Name)
		loc := s.deriver.Derive(slotPath, up.Data)
		*slots[i].Image = loc.Optimized
		*slots[i].Thumb = loc.Thumb
	}

	if article.ID == 0 {
		err = s.articles.Create(article)
	} else {
		err = s.articles.Update(article)
	}
	if err != nil {
		return err
	}

	s.invalidate(article.TenantID)
	return nil
}

// DeleteArticle removes an article within the scope.
func (s *CatalogService) DeleteArticle(res tenancy.Resolution, id uint) error {
	article, err := s.articles.FindByID(res, id)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(res, id); err != nil {
		return err
	}
	s.invalidate(article.TenantID)
	return nil
}

// stampTenant derives the article's tenant from the resolution. A
// non-elevated principal never chooses a tenant: the field is
// overwritten from the scope. Superusers must supply one explicitly.
func (s *CatalogService) stampTenant(res tenancy.Resolution, article *models.Article) error {
	switch res.Kind {
	case tenancy.KindTenant:
		article.TenantID = res.TenantID
		return nil
	case tenancy.KindAll:
		if article.TenantID == 0 {
			return ErrNoTenant
		}
		return nil
	default:
		return ErrNoTenant
	}
}

func (s *CatalogService) invalidate(tenantID uint) {
	if err := cache.ForgetPrefix(fmt.Sprintf("catalog:%d:", tenantID)); err != nil {
		logger.Warn("catalog cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
	if err := cache.ForgetPrefix("catalog:all:"); err != nil {
		logger.Warn("catalog cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
}

// ── view assembly ─────────────────────────────────────────────────────────────

func (s *CatalogService) listView(a *models.Article) ArticleListView {
	v := ArticleListView{
		ID:         a.ID,
		Modele:     a.Modele,
		Brand:      BrandRef{ID: a.BrandID, Name: a.Brand.Name},
		Thumb:      s.deriver.ThumbURL(firstNonEmpty(a.Thumb, a.Thumb2, a.Thumb3)),
		Prix:       a.Prix,
		RAMGB:      a.RAMGB,
		StockageGB: a.StockageGB,
	}
	if a.CategoryID != nil && a.Category != nil {
		v.Category = &CategoryRef{ID: *a.CategoryID, Name: a.Category.Name}
	}
	return v
}

func (s *CatalogService) detailView(a *models.Article) ArticleDetailView {
	v := ArticleDetailView{
		ArticleListView: s.listView(a),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	for _, slot := range a.Slots() {
		if *slot.Image != "" {
			v.Images = append(v.Images, s.deriver.OptimizedURL(*slot.Image))
		}
		if *slot.Thumb != "" {
			v.Thumbs = append(v.Thumbs, s.deriver.ThumbURL(*slot.Thumb))
		}
	}
	return v
}

func featuredCacheKey(res tenancy.Resolution) string {
	switch res.Kind {
	case tenancy.KindTenant:
		return fmt.Sprintf("catalog:%d:featured", res.TenantID)
	case tenancy.KindAll:
		return "catalog:all:featured"
	default:
		return "" // nothing to cache for an unresolved tenant
	}
}

// articleAssetPath gives each upload a tenant-prefixed, timestamped
// storage path so re-uploads never collide.
func articleAssetPath(tenantID uint, slot int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("articles/%d/%d_%d%s", tenantID, time.Now().UnixNano(), slot, ext)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
