package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/tenancy"
	"github.com/vitrinehq/vitrine/pkg/auth"
	"github.com/vitrinehq/vitrine/pkg/database"
)

// vitrine tenant:create — register a storefront and its admin in one go.
var tenantCreateCmd = &cobra.Command{
	Use:   "tenant:create <name> <domain> <admin-email> <admin-password>",
	Short: "Create a tenant with its admin user",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		name, domain, email, password := args[0], args[1], args[2], args[3]

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		admin := models.User{Name: name + " admin", Email: email, Password: hash}
		if err := database.DB.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		tenant := models.Tenant{
			Name:        name,
			Domain:      tenancy.NormalizeOrigin(domain, ""),
			Active:      true,
			AdminUserID: &admin.ID,
		}
		if err := database.DB.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}

		fmt.Printf("Created tenant %q (id %d) with admin %s\n", tenant.Name, tenant.ID, admin.Email)
		return nil
	},
}
