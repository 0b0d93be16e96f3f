package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/api"
	"github.com/iudanet/lingua/internal/client/guard"
	"github.com/iudanet/lingua/internal/client/nav"
	"github.com/iudanet/lingua/internal/models"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

func (c *Cli) adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration panel",
	}
	cmd.AddCommand(
		c.adminLoginCommand(),
		c.adminLogoutCommand(),
		c.adminDashboardCommand(),
		c.adminUsersCommand(),
	)
	return cmd
}

func (c *Cli) adminLoginCommand() *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a separate admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdminLogin(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "Admin email")
	addPasswordFlags(cmd, &opts.passwords)
	return cmd
}

// runAdminLogin получает отдельную пару adminToken/adminUser.
// Основная сессия пользователя не изменяется.
func (c *Cli) runAdminLogin(ctx context.Context, opts loginOptions) error {
	c.io.Println("=== Admin Login ===")

	email, err := c.inputOr(opts.email, "Email: ")
	if err != nil {
		return err
	}
	password, err := c.getPassword(opts.passwords, "Password: ")
	if err != nil {
		return err
	}

	res, err := c.apiClient.Request(ctx, pkgapi.PathLogin, api.RequestOptions{
		Method: http.MethodPost,
		Body:   pkgapi.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return resultError(res, "admin login failed")
	}

	var payload pkgapi.AuthPayload
	if err := res.Decode(&payload); err != nil {
		return err
	}
	pair := payload.Pair()
	if payload.User == nil || pair.AccessToken == "" {
		return fmt.Errorf("admin login failed: unexpected response from server")
	}
	if !guard.LegacyRoleAllowed(payload.User.Role) {
		return fmt.Errorf("account %s does not have admin access", payload.User.Email)
	}

	if err := c.legacy.Save(ctx, pair.AccessToken, payload.User); err != nil {
		return fmt.Errorf("failed to save admin session: %w", err)
	}

	c.io.Println("✓ Admin session opened")
	c.io.Printf("Admin: %s (%s)\n", payload.User.Username, payload.User.Role)
	return nil
}

func (c *Cli) adminLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the separate admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.legacy.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear admin session: %w", err)
			}
			c.io.Println("✓ Admin session closed")
			return nil
		},
	}
}

func (c *Cli) adminDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdminGet(cmd.Context(), "Admin Dashboard", pkgapi.PathAdminDashboard, nil)
		},
	}
}

func (c *Cli) adminUsersCommand() *cobra.Command {
	var (
		search string
		role   string
		page   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" && !models.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			query := url.Values{}
			if search != "" {
				query.Set("search", search)
			}
			if role != "" {
				query.Set("role", role)
			}
			if page > 0 {
				query.Set("page", strconv.Itoa(page))
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			return c.runAdminGet(cmd.Context(), "Users", pkgapi.PathAdminUsers, query)
		},
	}

	f := cmd.Flags()
	f.StringVar(&search, "search", "", "Search by name or email")
	f.StringVar(&role, "role", "", "Filter by role")
	f.IntVar(&page, "page", 0, "Page number")
	f.IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

func (c *Cli) runAdminGet(ctx context.Context, title, endpoint string, query url.Values) error {
	if err := c.requireAdmin(ctx); err != nil {
		return err
	}

	headers := c.adminHeaders(ctx)
	res, err := c.apiClient.Request(ctx, endpoint, api.RequestOptions{
		Method:  http.MethodGet,
		Query:   query,
		Headers: headers,
	})
	if err != nil {
		return err
	}
	if res.Status == http.StatusUnauthorized && headers != nil {
		return c.expireAdminSession(ctx)
	}
	if !res.Success {
		return resultError(res, "admin request failed")
	}

	c.io.Printf("=== %s ===\n", title)
	return c.printData(res)
}

// adminHeaders возвращает Authorization отдельной admin-сессии,
// если доступ дает не основная сессия
func (c *Cli) adminHeaders(ctx context.Context) map[string]string {
	if c.manager.IsAdmin() {
		return nil
	}
	admin, ok := c.legacy.Load(ctx)
	if !ok {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + admin.Token}
}

// expireAdminSession удаляет отклоненную сервером admin-сессию
// и отправляет на вход администратора
func (c *Cli) expireAdminSession(ctx context.Context) error {
	if err := c.legacy.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear admin session", "error", err)
	}
	c.logger.WarnContext(ctx, "admin session expired")
	c.navigator.Navigate(ctx, nav.RouteAdminLogin)
	return fmt.Errorf("%w: admin session expired, redirected to %s", ErrRedirected, nav.RouteAdminLogin)
}
