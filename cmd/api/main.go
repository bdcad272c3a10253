package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title AthleteNexus API
// @version 1.0.0
// @description Class catalog, enrollment and payment backend
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "athletenexus-api",
		Short:   "AthleteNexus enrollment and payment API",
		Version: version,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
