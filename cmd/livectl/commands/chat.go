package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eleven-am/live-console/internal/live"
)

var chatCmd = &cobra.Command{
	Use:   "chat <text>",
	Short: "Send one text turn",
	Long: `Connect, send one text turn and print the reply as it streams in.
The spoken reply is written to the --output WAV file.

Examples:
  livectl chat "Tell me a short joke"
  livectl chat -p narrator --config presets.yaml "Read this line slowly" -o line.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		logger := newLogger(cmd.ErrOrStderr())
		client, cfg, err := newClient(ctx, logger)
		if err != nil {
			return err
		}

		cv := newConversation(client, cmd.OutOrStdout(), cmd.ErrOrStderr())
		defer cv.close()

		return runChat(ctx, client, cfg, cv, strings.Join(args, " "))
	},
}

func runChat(ctx context.Context, client *live.Client, cfg *live.SessionConfig, cv *conversation, text string) error {
	if err := client.Connect(ctx, cfg); err != nil {
		return err
	}
	defer client.Disconnect()

	if err := client.Send([]live.Part{live.TextPart(text)}); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := cv.wait(ctx); err != nil {
		return err
	}
	return cv.save(outputFile)
}
