package repositories

import (
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/pkg/orm"
)

// TenantRepository handles database operations for Tenant. Tenant
// management is superuser-only, so nothing here takes a resolution.
type TenantRepository struct{}

func NewTenantRepository() *TenantRepository {
	return &TenantRepository{}
}

func (r *TenantRepository) All() ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := orm.DB().Model(&models.Tenant{}).Order("name ASC").Get(&tenants)
	return tenants, err
}

func (r *TenantRepository) FindByID(id uint) (models.Tenant, error) {
	var tenant models.Tenant
	err := orm.DB().Model(&models.Tenant{}).Where("id = ?", id).First(&tenant)
	return tenant, err
}

func (r *TenantRepository) FindByDomain(domain string) (models.Tenant, error) {
	var tenant models.Tenant
	err := orm.DB().Model(&models.Tenant{}).Where("domain = ?", domain).First(&tenant)
	return tenant, err
}

func (r *TenantRepository) Create(tenant *models.Tenant) error {
	return orm.DB().Create(tenant)
}

func (r *TenantRepository) Update(tenant *models.Tenant) error {
	return orm.DB().Save(tenant)
}

func (r *TenantRepository) Delete(id uint) error {
	tenant, err := r.FindByID(id)
	if err != nil {
		return err
	}
	return orm.DB().Delete(&tenant)
}
