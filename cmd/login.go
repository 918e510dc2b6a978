package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skrblv/bilimGO/internal/api"
	"github.com/skrblv/bilimGO/internal/auth"
	"github.com/skrblv/bilimGO/internal/store"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and cache the session",
	Long:  "Authenticates against the Bilim API and stores the tokens locally so the TUI starts straight on the dashboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		reader := bufio.NewReader(cmd.InOrStdin())

		if email == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read email: %w", err)
			}
			email = strings.TrimSpace(line)
		}

		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password := strings.TrimRight(line, "\r\n")

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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := authStore.Login(ctx, client, email, password); err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("login rejected: %s", apiErr.Detail)
			}
			return err
		}

		if u := authStore.User(); u != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d XP).\n", u.Username, u.XP)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (prompted when omitted)")
}
