package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/iudanet/lingua/internal/models"
	pkgapi "github.com/iudanet/lingua/pkg/api"
)

// featureView строка лимитов для шаблона
type featureView struct {
	Name      string
	Limit     int
	Used      int
	Remaining int
	Unlimited bool
}

type subscriptionView struct {
	Plan     string
	Status   string
	Features []featureView
	Premium  bool
}

func (c *Cli) subscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show your current subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSubscription(cmd.Context())
		},
	}

	plans := &cobra.Command{
		Use:   "plans",
		Short: "List available plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apiClient.Get(cmd.Context(), pkgapi.PathSubscriptionPlans, nil)
			if err != nil {
				return err
			}
			if !res.Success {
				return resultError(res, "failed to load plans")
			}
			c.io.Println("=== Plans ===")
			return c.printData(res)
		},
	}

	cmd.AddCommand(plans)
	return cmd
}

func (c *Cli) runSubscription(ctx context.Context) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	out := c.manager.LoadSubscription(ctx)
	if !out.Success {
		return fmt.Errorf("failed to load subscription: %s", out.Error)
	}

	sub := c.manager.Snapshot().Subscription
	view := subscriptionView{
		Plan:    sub.Plan,
		Status:  sub.Status,
		Premium: c.manager.IsPremium(),
	}
	for _, name := range featureNames(sub) {
		limit, _ := sub.Limit(name)
		view.Features = append(view.Features, featureView{
			Name:      name,
			Limit:     limit,
			Used:      sub.Used(name),
			Remaining: c.manager.RemainingUsage(name),
			Unlimited: limit == models.Unlimited,
		})
	}

	return c.render("subscription", subscriptionTemplate, view)
}

func (c *Cli) usageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usage [feature]",
		Short: "Check whether a feature can be used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAuth(ctx); err != nil {
				return err
			}

			sub := c.manager.Snapshot().Subscription
			if sub == nil {
				c.io.Println("No subscription information; run 'lingua subscription' to load it.")
				return nil
			}

			names := args
			if len(names) == 0 {
				names = featureNames(sub)
			}
			for _, name := range names {
				c.printUsage(name)
			}
			return nil
		},
	}
}

func (c *Cli) printUsage(feature string) {
	remaining := c.manager.RemainingUsage(feature)
	allowed := "no"
	if c.manager.CanUseFeature(feature, 1) {
		allowed = "yes"
	}

	switch remaining {
	case models.Unlimited:
		c.io.Printf("%s: available: %s, remaining: unlimited\n", feature, allowed)
	default:
		c.io.Printf("%s: available: %s, remaining: %d\n", feature, allowed, remaining)
	}
}

func featureNames(sub *models.Subscription) []string {
	if sub == nil {
		return nil
	}
	names := make([]string, 0, len(sub.Features))
	for name := range sub.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
