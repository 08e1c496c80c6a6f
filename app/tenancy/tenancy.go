// Package tenancy resolves which tenant a request may see and turns
// that answer into a query scope. Resolution never fails with an
// error for "not found": the caller always gets an explicit result,
// and the unresolved case scopes every query down to nothing.
package tenancy

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/metrics"
)

// Kind classifies a resolution result.
type Kind int

const (
	// KindNone means no tenant could be resolved. Fail closed.
	KindNone Kind = iota
	// KindTenant means exactly one tenant is visible.
	KindTenant
	// KindAll means full cross-tenant visibility (superusers only).
	KindAll
)

// Resolution is the outcome of tenant resolution for one request.
type Resolution struct {
	Kind     Kind
	TenantID uint // set only when Kind == KindTenant
}

func None() Resolution            { return Resolution{Kind: KindNone} }
func All() Resolution             { return Resolution{Kind: KindAll} }
func One(id uint) Resolution      { return Resolution{Kind: KindTenant, TenantID: id} }
func (r Resolution) IsAll() bool  { return r.Kind == KindAll }
func (r Resolution) IsNone() bool { return r.Kind == KindNone }

// ResolveUser resolves from an authenticated admin principal.
// Superusers see all tenants; anyone else sees the tenant linked to
// them through AdminUserID, or nothing.
func ResolveUser(db *gorm.DB, user *models.User) Resolution {
	if user == nil {
		metrics.TenantResolutions.WithLabelValues("admin", "none").Inc()
		return None()
	}
	if user.IsElevated() {
		metrics.TenantResolutions.WithLabelValues("admin", "all").Inc()
		return All()
	}
	var tenant models.Tenant
	err := db.Where("admin_user_id = ?", user.ID).First(&tenant).Error
	if err != nil {
		metrics.TenantResolutions.WithLabelValues("admin", "none").Inc()
		return None()
	}
	metrics.TenantResolutions.WithLabelValues("admin", "tenant").Inc()
	return One(tenant.ID)
}

// ResolveOrigin resolves from the public request's declared origin.
// The Origin header wins; absent that, the origin is rebuilt from the
// Referer's scheme and host. A trailing slash is stripped before the
// lookup. Only active tenants match.
func ResolveOrigin(db *gorm.DB, origin, referer string) Resolution {
	candidate := NormalizeOrigin(origin, referer)
	if candidate == "" {
		metrics.TenantResolutions.WithLabelValues("api", "none").Inc()
		return None()
	}
	var tenant models.Tenant
	err := db.Where("domain = ? AND active = ?", candidate, true).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || err != nil {
		metrics.TenantResolutions.WithLabelValues("api", "none").Inc()
		return None()
	}
	metrics.TenantResolutions.WithLabelValues("api", "tenant").Inc()
	return One(tenant.ID)
}

// NormalizeOrigin produces the domain string used for tenant lookup.
// Returns "" when neither header yields a usable origin.
func NormalizeOrigin(origin, referer string) string {
	candidate := strings.TrimSpace(origin)
	if candidate == "" && referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Scheme != "" && u.Host != "" {
			candidate = u.Scheme + "://" + u.Host
		}
	}
	return strings.TrimSuffix(candidate, "/")
}

// Scope restricts a query to the rows the resolution may see.
// Chain it with db.Scopes(tenancy.Scope(res)).
func Scope(r Resolution) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch r.Kind {
		case KindAll:
			return db
		case KindTenant:
			return db.Where("tenant_id = ?", r.TenantID)
		default:
			// fail closed: unresolved tenant sees nothing
			return db.Where("1 = 0")
		}
	}
}

// ScopeColumn is Scope with an explicit column, for joined queries
// where tenant_id alone would be ambiguous.
func ScopeColumn(r Resolution, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch r.Kind {
		case KindAll:
			return db
		case KindTenant:
			return db.Where(column+" = ?", r.TenantID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// ── context plumbing ──────────────────────────────────────────────────────────

type ctxKey struct{}

func WithResolution(ctx context.Context, r Resolution) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromCtx returns the request's resolution, defaulting to None so a
// handler that forgot the middleware still fails closed.
func FromCtx(ctx context.Context) Resolution {
	if r, ok := ctx.Value(ctxKey{}).(Resolution); ok {
		return r
	}
	return None()
}
