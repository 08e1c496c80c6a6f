package repositories

import (
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

// BrandRepository handles database operations for Brand.
type BrandRepository struct{}

func NewBrandRepository() *BrandRepository {
	return &BrandRepository{}
}

// All lists the brands visible to the resolution, name order. This is
// also the source for the article form's brand picker, so cross-tenant
// options never show up there.
func (r *BrandRepository) All(res tenancy.Resolution) ([]models.Brand, error) {
	var brands []models.Brand
	err := orm.DB().
		Model(&models.Brand{}).
		Scopes(tenancy.Scope(res)).
		Order("name ASC").
		Get(&brands)
	return brands, err
}

// BrandWithCount is the admin list row, carrying how many articles
// reference the brand.
type BrandWithCount struct {
	models.Brand
	ArticleCount int64 `json:"article_count"`
}

// AllWithCounts is All plus a per-brand article count, for the admin
// listing.
func (r *BrandRepository) AllWithCounts(res tenancy.Resolution) ([]BrandWithCount, error) {
	var rows []BrandWithCount
	err := orm.DB().
		Model(&models.Brand{}).
		Select("brands.*, (SELECT COUNT(*) FROM articles WHERE articles.brand_id = brands.id) AS article_count").
		Scopes(tenancy.Scope(res)).
		Order("name ASC").
		Get(&rows)
	return rows, err
}

func (r *BrandRepository) FindByID(res tenancy.Resolution, id uint) (models.Brand, error) {
	var brand models.Brand
	err := orm.DB().
		Model(&models.Brand{}).
		Scopes(tenancy.Scope(res)).
		Where("id = ?", id).
		First(&brand)
	return brand, err
}

func (r *BrandRepository) Create(brand *models.Brand) error {
	return orm.DB().Create(brand)
}

func (r *BrandRepository) Update(brand *models.Brand) error {
	return orm.DB().Save(brand)
}

func (r *BrandRepository) Delete(res tenancy.Resolution, id uint) error {
	brand, err := r.FindByID(res, id)
	if err != nil {
		return err
	}
	return orm.DB().Delete(&brand)
}

// ArticleCount counts the articles referencing one brand.
func (r *BrandRepository) ArticleCount(id uint) (int64, error) {
	var n int64
	err := orm.DB().
		Model(&models.Article{}).
		Where("brand_id = ?", id).
		Count(&n)
	return n, err
}

func (r *BrandRepository) CountByTenant(res tenancy.Resolution) (int64, error) {
	var n int64
	err := orm.DB().
		Model(&models.Brand{}).
		Scopes(tenancy.Scope(res)).
		Count(&n)
	return n, err
}
