package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/api"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// Поле формы с файлом аватара
const avatarField = "avatar"

func (c *Cli) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAuth(ctx); err != nil {
				return err
			}
			c.io.Println("=== Profile ===")
			return c.render("user", userTemplate, c.manager.Snapshot().User)
		},
	}

	cmd.AddCommand(
		c.profileUpdateCommand(),
		c.profilePasswordCommand(),
		c.profileAvatarCommand(),
	)
	return cmd
}

func (c *Cli) profileUpdateCommand() *cobra.Command {
	var fields pkgapi.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runProfileUpdate(cmd.Context(), fields)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fields.Username, "username", "", "New username")
	f.StringVar(&fields.FirstName, "first-name", "", "First name")
	f.StringVar(&fields.LastName, "last-name", "", "Last name")
	f.StringVar(&fields.NativeLanguage, "native-language", "", "Native language code")
	f.StringVar(&fields.TargetLanguage, "target-language", "", "Language to learn")
	f.StringVar(&fields.Level, "level", "", "Current level")
	return cmd
}

func (c *Cli) runProfileUpdate(ctx context.Context, fields pkgapi.ProfileUpdate) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}
	if fields == (pkgapi.ProfileUpdate{}) {
		return fmt.Errorf("nothing to update, see 'lingua profile update --help'")
	}

	out := c.manager.UpdateProfile(ctx, fields)
	if !out.Success {
		return fmt.Errorf("profile update failed: %s", out.Error)
	}

	c.io.Println("✓ Profile updated")
	return c.render("user", userTemplate, c.manager.Snapshot().User)
}

func (c *Cli) profilePasswordCommand() *cobra.Command {
	var current, next Passwords

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChangePassword(cmd.Context(), current, next)
		},
	}

	f := cmd.Flags()
	f.StringVar(&current.FromArgs, "current", "", "Current password")
	f.StringVar(&current.FromFile, "current-file", "", "Path to file containing the current password")
	f.StringVar(&next.FromArgs, "new", "", "New password")
	f.StringVar(&next.FromFile, "new-file", "", "Path to file containing the new password")
	return cmd
}

func (c *Cli) runChangePassword(ctx context.Context, current, next Passwords) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	// LINGUA_PASSWORD здесь не используется: нужны два разных пароля
	currentPassword, err := c.passwordFrom(current, "Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := c.passwordFrom(next, "New password (min 8 chars): ")
	if err != nil {
		return err
	}

	out := c.manager.ChangePassword(ctx, currentPassword, newPassword)
	if !out.Success {
		return fmt.Errorf("password change failed: %s", out.Error)
	}

	c.io.Println("✓ Password changed")
	return nil
}

func (c *Cli) profileAvatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAvatarUpload(cmd.Context(), args[0])
		},
	}
}

func (c *Cli) runAvatarUpload(ctx context.Context, path string) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open avatar: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	res := c.apiClient.Upload(ctx, pkgapi.PathUserAvatar, nil, api.UploadFile{
		FieldName: avatarField,
		FileName:  filepath.Base(path),
		Content:   f,
	})
	if !res.Success {
		return resultError(res, "avatar upload failed")
	}

	c.io.Println("✓ Avatar uploaded")
	var avatar pkgapi.AvatarResponse
	if err := res.Decode(&avatar); err == nil && avatar.Avatar != "" {
		c.io.Printf("Avatar: %s\n", avatar.Avatar)
	}
	return nil
}
