package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/domain/models"
	"inkwell/internal/stream"
)

var chatWait time.Duration

// NewChatCmd creates the chat command group.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the writing assistant",
	}

	send := &cobra.Command{
		Use:   "send <conversation-id> <message>",
		Short: "Send a message and stream the assistant's reply",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runChatSend,
	}
	send.Flags().DurationVar(&chatWait, "wait", 60*time.Second, "How long to wait for the reply to complete")

	cmd.AddCommand(send)
	return cmd
}

func runChatSend(cmd *cobra.Command, args []string) error {
	_, logger, client, err := setup()
	if err != nil {
		return err
	}

	conversationID := args[0]
	content := strings.Join(args[1:], " ")

	messages := stream.NewMessageList()
	streamClient := stream.NewClient(client, messages, logger)
	defer streamClient.Close()

	// Attach before sending so the first deltas are not missed.
	streamClient.Switch(cmd.Context(), conversationID)

	if err := streamClient.Send(cmd.Context(), conversationID, content); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	// Fold deltas until the assistant message completes.
	deadline := time.Now().Add(chatWait)
	var printed int
	for time.Now().Before(deadline) {
		if stage := streamClient.Stage(); stage != "" && printed == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s]\n", stage)
		}

		msgs := messages.Messages()
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			if last.Role == models.RoleAssistant {
				if len(last.Content) > printed {
					fmt.Fprint(cmd.OutOrStdout(), last.Content[printed:])
					printed = len(last.Content)
				}
				if last.Status == models.MessageStatusCompleted {
					fmt.Fprintln(cmd.OutOrStdout())
					return nil
				}
				if last.Status == models.MessageStatusFailed {
					return fmt.Errorf("assistant reply failed")
				}
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for the assistant reply")
}
