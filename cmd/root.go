package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/app"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/logging"
	"github.com/skrblv/bilimGO/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bilimgo",
	Short: "Learn programming from your terminal",
	Long:  "BilimGO — terminal client for the Bilim learning platform: courses, skill trees, interactive lessons and head-to-head challenges.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BILIMGO_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the Bilim API (overrides BILIMGO_API_URL env var)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BILIMGO_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveBaseURL returns the API base URL using --api-url flag, then the
// BILIMGO_API_URL env var, then the production default.
func resolveBaseURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		return u
	}
	if u := os.Getenv("BILIMGO_API_URL"); u != "" {
		return u
	}
	return api.DefaultBaseURL
}

// runApp opens the store, restores the session if one is cached, and
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, flush, err := logging.Setup()
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer flush()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	authStore := auth.New(st)
	client := api.NewClient(resolveBaseURL(cmd), authStore)

	// Best effort: with no cached session the TUI starts on the login
	// form instead.
	if err := authStore.Initialize(ctx, client); err != nil {
		log.Info("no session restored", zap.Error(err))
	}

	return app.Run(app.Options{
		API:  client,
		Auth: authStore,
		DB:   st,
		Log:  log,
	})
}
