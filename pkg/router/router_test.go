package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNamedRoutes(t *testing.T) {
	r := New()
	r.Get("/articles", "articles.list", ok)
	r.Get("/articles/{id}", "articles.detail", ok)

	path, found := r.Path("articles.detail")
	require.True(t, found)
	assert.Equal(t, "/articles/{id}", path)

	_, found = r.Path("missing")
	assert.False(t, found)
}

func TestURLBuilding(t *testing.T) {
	r := New()
	r.Get("/articles/{id}", "articles.detail", ok)

	u, err := r.URL("articles.detail", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/articles/42", u)

	_, err = r.URL("articles.detail", nil)
	assert.Error(t, err, "missing params")

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestGroupsNestAndServe(t *testing.T) {
	r := New()
	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Get("/dashboard", "admin.dashboard", ok)

	path, found := r.Path("admin.dashboard")
	require.True(t, found)
	assert.Equal(t, "/api/admin/dashboard", path)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGroupMiddlewareApplies(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := New()
	g := r.Group("/api", mw("outer"))
	g.Get("/x", "x", ok, mw("inner"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRoutesSnapshot(t *testing.T) {
	r := New()
	r.Get("/a", "a", ok)
	r.Post("/b", "b", ok)
	r.Delete("/c", "", ok) // unnamed routes are not listed

	infos := r.Routes()
	assert.Len(t, infos, 2)
}

func TestMethodNotAllowed(t *testing.T) {
	r := New()
	r.Get("/only-get", "g", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
