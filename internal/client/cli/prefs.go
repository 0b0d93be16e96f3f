package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/client/prefs"
)

func (c *Cli) prefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Local preferences",
	}
	cmd.AddCommand(
		c.prefsThemeCommand(),
		c.prefsOnboardingCommand(),
		c.prefsInstallPromptCommand(),
	)
	return cmd
}

func (c *Cli) prefsThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or set the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(prefs.ThemeLight), string(prefs.ThemeDark), string(prefs.ThemeSystem)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				theme, err := prefs.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := c.prefs.SetTheme(ctx, theme); err != nil {
					return fmt.Errorf("failed to save theme: %w", err)
				}
			}

			theme, err := c.prefs.Theme(ctx)
			if err != nil {
				return err
			}
			c.io.Printf("Theme: %s\n", theme)
			return nil
		},
	}
}

func (c *Cli) prefsOnboardingCommand() *cobra.Command {
	var (
		set      []string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show or change onboarding answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if clearAll {
				if err := c.prefs.ClearOnboarding(ctx); err != nil {
					return fmt.Errorf("failed to clear onboarding answers: %w", err)
				}
				c.io.Println("✓ Onboarding answers cleared")
				return nil
			}

			answers, err := c.prefs.OnboardingAnswers(ctx)
			if err != nil {
				return err
			}

			if len(set) > 0 {
				if answers == nil {
					answers = make(map[string]any)
				}
				for _, kv := range set {
					key, value, ok := strings.Cut(kv, "=")
					if !ok || key == "" {
						return fmt.Errorf("invalid answer %q, expected key=value", kv)
					}
					answers[key] = value
				}
				if err := c.prefs.SetOnboardingAnswers(ctx, answers); err != nil {
					return fmt.Errorf("failed to save onboarding answers: %w", err)
				}
			}

			if len(answers) == 0 {
				c.io.Println("Onboarding not completed.")
				return nil
			}

			keys := make([]string, 0, len(answers))
			for k := range answers {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				c.io.Printf("%s: %v\n", k, answers[k])
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Set an answer (key=value), repeatable")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all answers")
	return cmd
}

func (c *Cli) prefsInstallPromptCommand() *cobra.Command {
	var dismiss bool

	cmd := &cobra.Command{
		Use:   "install-prompt",
		Short: "Show or dismiss the app install prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dismiss {
				if err := c.prefs.DismissPWA(ctx); err != nil {
					return fmt.Errorf("failed to save install prompt flag: %w", err)
				}
			}

			dismissed, err := c.prefs.PWADismissed(ctx)
			if err != nil {
				return err
			}
			c.io.Printf("Install prompt dismissed: %t\n", dismissed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dismiss, "dismiss", false, "Do not show the install prompt again")
	return cmd
}
