// Server-only binary for deployments that do not need the full CLI.
package main

import (
	"fmt"
	"os"

	"github.com/vitrinehq/vitrine/internal/server"

	_ "github.com/vitrinehq/vitrine/database/migrations"
)

func main() {
	if err := server.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
