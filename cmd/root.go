package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mdworks/markpad/internal/app"
	"github.com/mdworks/markpad/internal/config"
)

// rootCmd launches the editor session. The GUI front end binds to the
// session at startup; without one the session runs against the headless
// null surface.
var rootCmd = &cobra.Command{
	Use:   "markpad",
	Short: "markdown editor with live preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		session, err := app.NewSession(cfg, app.NewNullSurface())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if err := session.Start(ctx); err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logrus.Info("shutting down")
		cancel()
		return session.Close(context.Background())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
