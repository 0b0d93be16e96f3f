package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/auth"
	"github.com/iudanet/lingua/internal/client/guard"
)

func (c *Cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Printf("Server: %s\n", c.apiClient.BaseURL())
	c.io.Printf("Database: %s\n", c.cfg.DBPath)

	sess := c.manager.Snapshot()
	if !sess.Authenticated() {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'lingua login' to authenticate.")
		if guard.HasAdminAccess(ctx, sess, c.legacy) {
			c.io.Println("Admin session: active")
		}
		return nil
	}

	c.io.Println("Status: Authenticated")
	if err := c.render("user", userTemplate, sess.User); err != nil {
		return err
	}

	if sess.Subscription != nil {
		c.io.Printf("Plan:     %s (%s)\n", sess.Subscription.Plan, sess.Subscription.Status)
	}
	if guard.HasAdminAccess(ctx, sess, c.legacy) {
		c.io.Println("Admin:    yes")
	}

	c.printTokenExpiry(ctx)
	return nil
}

// printTokenExpiry выводит срок действия access token, если он читается как JWT
func (c *Cli) printTokenExpiry(ctx context.Context) {
	token, ok, err := c.tokens.Get(ctx, auth.AccessToken)
	if err != nil || !ok {
		return
	}

	claims, err := auth.ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		c.logger.DebugContext(ctx, "access token expiry unknown", "error", err)
		return
	}

	now := time.Now()
	c.io.Printf("Token expires: %s\n", claims.ExpiresAt.Format(time.RFC3339))
	if claims.Expired(now) {
		c.io.Println("⚠️  Access token has expired; it will be refreshed on the next request.")
		return
	}
	c.io.Printf("Time remaining: %s\n", claims.ExpiresAt.Sub(now).Round(time.Second))
}
