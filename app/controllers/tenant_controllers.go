package controllers

import (
	"net/http"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repositories"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/bind"
	"github.com/vitrinehq/vitrine/pkg/response"
)

// TenantController manages tenants. The whole surface is mounted
// behind RequireSuperuser; tenant admins never reach it.
type TenantController struct {
	tenants *repositories.TenantRepository
}

func NewTenantController() *TenantController {
	return &TenantController{
		tenants: repositories.NewTenantRepository(),
	}
}

type tenantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Domain      string `json:"domain" validate:"required,url"`
	Active      *bool  `json:"active"`
	AdminUserID *uint  `json:"admin_user_id"`
}

// List is GET /admin/tenants.
func (c *TenantController) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := c.tenants.All()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list tenants")
		return
	}
	response.Success(w, tenants)
}

// Create is POST /admin/tenants. The domain is normalized the same
// way origin resolution normalizes it, so lookups always match.
func (c *TenantController) Create(w http.ResponseWriter, r *http.Request) {
	var body tenantRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	tenant := models.Tenant{
		Name:        body.Name,
		Domain:      tenancy.NormalizeOrigin(body.Domain, ""),
		Active:      true,
		AdminUserID: body.AdminUserID,
	}
	if body.Active != nil {
		tenant.Active = *body.Active
	}

	if err := c.tenants.Create(&tenant); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create tenant")
		return
	}
	response.Created(w, tenant)
}

// Update is PUT /admin/tenants/{id}.
func (c *TenantController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	tenant, err := c.tenants.FindByID(id)
	if err != nil {
		response.NotFound(w)
		return
	}

	var body tenantRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	tenant.Name = body.Name
	tenant.Domain = tenancy.NormalizeOrigin(body.Domain, "")
	tenant.AdminUserID = body.AdminUserID
	if body.Active != nil {
		tenant.Active = *body.Active
	}

	if err := c.tenants.Update(&tenant); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not update tenant")
		return
	}
	response.Success(w, tenant)
}

// Delete is DELETE /admin/tenants/{id}. Catalog rows cascade.
func (c *TenantController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	if err := c.tenants.Delete(id); err != nil {
		response.NotFound(w)
		return
	}
	response.Success(w, map[string]uint{"deleted": id})
}
