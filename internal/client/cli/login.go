package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/lingua/pkg/api"
)

type loginOptions struct {
	email     string
	passwords Passwords
}

func (c *Cli) loginCommand() *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "Account email")
	addPasswordFlags(cmd, &opts.passwords)
	return cmd
}

func addPasswordFlags(cmd *cobra.Command, p *Passwords) {
	cmd.Flags().StringVar(&p.FromArgs, "password", "", "Password (not recommended, use "+EnvPassword+" or --password-file)")
	cmd.Flags().StringVar(&p.FromFile, "password-file", "", "Path to file containing the password")
}

func (c *Cli) runLogin(ctx context.Context, opts loginOptions) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.inputOr(opts.email, "Email: ")
	if err != nil {
		return err
	}

	password, err := c.getPassword(opts.passwords, "Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	out := c.manager.Login(ctx, email, password)
	if !out.Success {
		return fmt.Errorf("login failed: %s", out.Error)
	}

	sess := c.manager.Snapshot()
	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Welcome back, %s! Level %d, %d XP.\n", sess.User.Username, sess.User.Level, sess.User.TotalXP)
	if c.manager.IsAdmin() {
		c.io.Println("Admin access: yes")
	}

	return nil
}

type signupOptions struct {
	fields    pkgapi.RegisterRequest
	passwords Passwords
}

func (c *Cli) signupCommand() *cobra.Command {
	var opts signupOptions

	cmd := &cobra.Command{
		Use:     "signup",
		Aliases: []string{"register"},
		Short:   "Create a new account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSignup(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fields.Username, "username", "", "Username (3-30 characters)")
	f.StringVar(&opts.fields.Email, "email", "", "Email")
	f.StringVar(&opts.fields.FirstName, "first-name", "", "First name")
	f.StringVar(&opts.fields.LastName, "last-name", "", "Last name")
	f.StringVar(&opts.fields.NativeLanguage, "native-language", "", "Native language code")
	f.StringVar(&opts.fields.TargetLanguage, "target-language", "", "Language to learn")
	f.StringVar(&opts.fields.Level, "level", "", "Current level: beginner, intermediate, advanced")
	addPasswordFlags(cmd, &opts.passwords)
	return cmd
}

func (c *Cli) runSignup(ctx context.Context, opts signupOptions) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	fields := opts.fields
	var err error

	if fields.Username, err = c.inputOr(fields.Username, "Username: "); err != nil {
		return err
	}
	if fields.Email, err = c.inputOr(fields.Email, "Email: "); err != nil {
		return err
	}

	if fields.Password, err = c.getPassword(opts.passwords, "Password (min 8 chars): "); err != nil {
		return err
	}

	// Подтверждение пароля только при интерактивном вводе
	if opts.passwords.FromArgs == "" && opts.passwords.FromFile == "" && !passwordFromEnv() {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm != fields.Password {
			return fmt.Errorf("passwords do not match")
		}
	}

	c.io.Println("Registering user...")

	out := c.manager.Signup(ctx, fields)
	if !out.Success {
		return fmt.Errorf("registration failed: %s", out.Error)
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Username: %s\n", c.manager.Snapshot().User.Username)
	c.io.Println("You are now logged in.")

	return nil
}
