package cli

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/lingua/pkg/api"
)

func (c *Cli) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your learning dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd.Context())
		},
	}
}

func (c *Cli) runDashboard(ctx context.Context) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	c.io.Println("=== Dashboard ===")
	if err := c.render("user", userTemplate, c.manager.Snapshot().User); err != nil {
		return err
	}

	res, err := c.apiClient.Get(ctx, pkgapi.PathUserDashboard, nil)
	if err != nil {
		return err
	}
	if !res.Success {
		return resultError(res, "failed to load dashboard")
	}
	return c.printData(res)
}

func (c *Cli) leaderboardCommand() *cobra.Command {
	var (
		limit  int
		period string
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the XP leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAuth(ctx); err != nil {
				return err
			}

			query := url.Values{}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if period != "" {
				query.Set("period", period)
			}

			res, err := c.apiClient.Get(ctx, pkgapi.PathUserLeaderboard, query)
			if err != nil {
				return err
			}
			if !res.Success {
				return resultError(res, "failed to load leaderboard")
			}

			entries, err := decodeList[pkgapi.LeaderboardEntry](res, "leaderboard", "users")
			if err != nil {
				return err
			}
			return c.render("leaderboard", leaderboardTemplate, entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries")
	cmd.Flags().StringVar(&period, "period", "", "Period: week, month, all")
	return cmd
}

type lessonFilter struct {
	language string
	level    string
	category string
	page     int
	limit    int
}

func (f lessonFilter) query() url.Values {
	q := url.Values{}
	if f.language != "" {
		q.Set("language", f.language)
	}
	if f.level != "" {
		q.Set("level", f.level)
	}
	if f.category != "" {
		q.Set("category", f.category)
	}
	if f.page > 0 {
		q.Set("page", strconv.Itoa(f.page))
	}
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	return q
}

func (c *Cli) lessonsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Browse lessons",
	}

	var filter lessonFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLessons(cmd.Context(), pkgapi.PathLessons, filter.query())
		},
	}
	list.Flags().StringVar(&filter.language, "language", "", "Filter by language")
	list.Flags().StringVar(&filter.level, "level", "", "Filter by level")
	list.Flags().StringVar(&filter.category, "category", "", "Filter by category")
	list.Flags().IntVar(&filter.page, "page", 0, "Page number")
	list.Flags().IntVar(&filter.limit, "limit", 0, "Page size")

	popular := &cobra.Command{
		Use:   "popular",
		Short: "List popular lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLessons(cmd.Context(), pkgapi.PathLessonsPopular, nil)
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search lessons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"q": {strings.Join(args, " ")}}
			return c.runLessons(cmd.Context(), pkgapi.PathLessonsSearch, q)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.requireAuth(ctx); err != nil {
				return err
			}
			res, err := c.apiClient.Get(ctx, pkgapi.LessonPath(url.PathEscape(args[0])), nil)
			if err != nil {
				return err
			}
			if !res.Success {
				return resultError(res, "lesson not found")
			}
			return c.printData(res)
		},
	}

	cmd.AddCommand(list, popular, search, show)
	return cmd
}

func (c *Cli) runLessons(ctx context.Context, endpoint string, query url.Values) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	res, err := c.apiClient.Get(ctx, endpoint, query)
	if err != nil {
		return err
	}
	if !res.Success {
		return resultError(res, "failed to load lessons")
	}

	lessons, err := decodeList[pkgapi.LessonSummary](res, "lessons", "results")
	if err != nil {
		return err
	}

	c.io.Println("=== Lessons ===")
	return c.render("lessons", lessonsListTemplate, lessons)
}
