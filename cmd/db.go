package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mdworks/markpad/internal/config"
	"github.com/mdworks/markpad/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(migrateCmd())
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			return s.Migrate()
		},
	}
}
