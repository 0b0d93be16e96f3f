package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/lingua/pkg/api"
)

const (
	// FeatureAIChat имя функции AI-чата в лимитах подписки
	FeatureAIChat = "aiChat"
	// chatXP опыт за сообщение, если сервер не сообщил свое значение
	chatXP = 10
)

func (c *Cli) chatCommand() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the AI tutor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChat(cmd.Context(), strings.Join(args, " "), conversationID)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "Continue an existing conversation")
	return cmd
}

func (c *Cli) runChat(ctx context.Context, message, conversationID string) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	if !c.manager.CanUseFeature(FeatureAIChat, 1) {
		return fmt.Errorf("AI chat limit reached for this period (%d left); upgrade your plan to continue",
			max(0, c.manager.RemainingUsage(FeatureAIChat)))
	}

	res, err := c.apiClient.Post(ctx, pkgapi.PathAIChat, pkgapi.ChatRequest{
		Message:        message,
		ConversationID: conversationID,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return resultError(res, "chat request failed")
	}

	var reply pkgapi.ChatResponse
	if err := res.Decode(&reply); err != nil {
		return err
	}

	c.io.Println(reply.Reply)
	c.io.Println()
	if reply.ConversationID != "" {
		c.io.Printf("Conversation: %s\n", reply.ConversationID)
	}

	// Локальный учет: потребление, опыт и серия дней
	c.manager.RecordUsage(FeatureAIChat, 1)

	xp := reply.XPEarned
	if xp <= 0 {
		xp = chatXP
	}
	leveledUp := c.manager.AddXP(xp)
	streak := c.manager.UpdateStreak()

	user := c.manager.Snapshot().User
	c.io.Printf("+%d XP (total %d). Streak: %d day(s).\n", xp, user.TotalXP, streak)
	if leveledUp {
		c.io.Printf("🎉 Level up! You are now level %d.\n", user.Level)
	}
	if remaining := c.manager.RemainingUsage(FeatureAIChat); remaining >= 0 {
		c.io.Printf("AI chat messages left this period: %d\n", remaining)
	}

	return nil
}
