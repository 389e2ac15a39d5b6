package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "cidade-aberta",
		Short:        "Cidade Aberta citizen reporting portal",
		Long:         `Backend of the Cidade Aberta portal: HTTP API, schema migrations, notification worker and admin tooling.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newWorkerCommand(),
		newCreateAdminCommand(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
