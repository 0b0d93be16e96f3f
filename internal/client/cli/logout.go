package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/nav"
)

func (c *Cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogout(cmd.Context())
		},
	}
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.manager.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}

func (c *Cli) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAuth(ctx); err != nil {
				return err
			}
			if err := c.manager.RefreshToken(ctx); err != nil {
				c.navigator.Navigate(ctx, nav.RouteLogin)
				return err
			}
			c.io.Println("✓ Access token refreshed")
			return nil
		},
	}
}
