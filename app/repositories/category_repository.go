package repositories

import (
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct{}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// All lists the categories visible to the resolution, name order. Like
// brands, this backs the article form's category picker.
func (r *CategoryRepository) All(res tenancy.Resolution) ([]models.Category, error) {
	var categories []models.Category
	err := orm.DB().
		Model(&models.Category{}).
		Scopes(tenancy.Scope(res)).
		Order("name ASC").
		Get(&categories)
	return categories, err
}

// CategoryWithCount is the admin list row, carrying how many articles
// reference the category.
type CategoryWithCount struct {
	models.Category
	ArticleCount int64 `json:"article_count"`
}

// AllWithCounts is All plus a per-category article count, for the
// admin listing.
func (r *CategoryRepository) AllWithCounts(res tenancy.Resolution) ([]CategoryWithCount, error) {
	var rows []CategoryWithCount
	err := orm.DB().
		Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM articles WHERE articles.category_id = categories.id) AS article_count").
		Scopes(tenancy.Scope(res)).
		Order("name ASC").
		Get(&rows)
	return rows, err
}

func (r *CategoryRepository) FindByID(res tenancy.Resolution, id uint) (models.Category, error) {
	var category models.Category
	err := orm.DB().
		Model(&models.Category{}).
		Scopes(tenancy.Scope(res)).
		Where("id = ?", id).
		First(&category)
	return category, err
}

func (r *CategoryRepository) Create(category *models.Category) error {
	return orm.DB().Create(category)
}

func (r *CategoryRepository) Update(category *models.Category) error {
	return orm.DB().Save(category)
}

func (r *CategoryRepository) Delete(res tenancy.Resolution, id uint) error {
	category, err := r.FindByID(res, id)
	if err != nil {
		return err
	}
	return orm.DB().Delete(&category)
}

// ArticleCount counts the articles referencing one category.
func (r *CategoryRepository) ArticleCount(id uint) (int64, error) {
	var n int64
	err := orm.DB().
		Model(&models.Article{}).
		Where("category_id = ?", id).
		Count(&n)
	return n, err
}

func (r *CategoryRepository) CountByTenant(res tenancy.Resolution) (int64, error) {
	var n int64
	err := orm.DB().
		Model(&models.Category{}).
		Scopes(tenancy.Scope(res)).
		Count(&n)
	return n, err
}
