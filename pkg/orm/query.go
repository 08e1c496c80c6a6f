// Package orm is a thin, chainable query layer over GORM.
//
// It exists so repositories share one idiom for scoping, pagination and
// read-through caching instead of each re-wiring raw *gorm.DB calls:
//
//	var articles []models.Article
//	p, err := orm.DB().
//	    Model(&models.Article{}).
//	    Scopes(tenancy.Scope(res)).
//	    Order("created_at DESC").
//	    GetWithPagination(&articles, page, perPage)
package orm

import (
	"time"

	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/pkg/database"
)

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Cacher is the read-through cache hook. Wired at boot to pkg/cache so orm
// and cache never import each other.
type Cacher interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration) error
}

// CacheStore is set during server boot. Nil means caching is disabled.
var CacheStore Cacher

type Query struct {
	db *gorm.DB
}

// DB starts a query on the globally connected database.
func DB() *Query {
	return &Query{db: database.DB}
}

// With starts a query on an explicit *gorm.DB (tests, transactions).
func With(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Select(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Select(query, args...)}
}

func (q *Query) Joins(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Joins(query, args...)}
}

func (q *Query) Scopes(fns ...func(*gorm.DB) *gorm.DB) *Query {
	return &Query{db: q.db.Scopes(fns...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Preload(relation string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(relation, args...)}
}

func (q *Query) Distinct(args ...interface{}) *Query {
	return &Query{db: q.db.Distinct(args...)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count(n *int64) error {
	return q.db.Count(n).Error
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

func (q *Query) Delete(v interface{}, conds ...interface{}) error {
	return q.db.Delete(v, conds...).Error
}

// GetWithPagination runs the query twice: once for the total count, once
// for the requested page. perPage is clamped to [1, 100].
func (q *Query) GetWithPagination(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	if perPage > 100 {
		perPage = 100
	}

	var total int64
	counter := q.db.Session(&gorm.Session{})
	if err := counter.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * perPage
	if err := q.db.Offset(offset).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Cache reads dest from CacheStore under key; on miss it runs the query and
// stores the result for ttl. Falls through to the query when no cache is
// wired.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if CacheStore != nil && CacheStore.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	if CacheStore != nil {
		_ = CacheStore.Set(key, dest, ttl)
	}
	return nil
}
