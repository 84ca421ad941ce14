package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/eleven-am/live-console/internal/auditlog"
)

var (
	redisAddr     string
	redisPassword string
	tailJSON      bool
)

var tailCmd = &cobra.Command{
	Use:   "tail <session-id>",
	Short: "Follow the log of a console session",
	Long: `Follow the log entries a running server publishes for one console session.
Entries are read from the redis channel live:<session-id>:logs until
interrupted.

Examples:
  livectl tail 1f0c6a52-6d1e-4c36-9f0e-3a1c1e3f8b42
  livectl tail 1f0c6a52-6d1e-4c36-9f0e-3a1c1e3f8b42 --json | jq .entry.type`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPassword})
		defer client.Close()

		printVerbose(cmd.ErrOrStderr(), "following %s on %s", auditlog.Channel(args[0]), redisAddr)
		return followLogs(ctx, client, args[0], cmd.OutOrStdout(), tailJSON)
	},
}

func followLogs(ctx context.Context, client *redis.Client, sessionID string, out io.Writer, asJSON bool) error {
	return auditlog.Follow(ctx, client, sessionID, func(rec auditlog.Record) {
		if asJSON {
			data, err := json.Marshal(rec)
			if err == nil {
				fmt.Fprintln(out, string(data))
			}
			return
		}
		fmt.Fprintln(out, formatRecord(rec))
	})
}

func formatRecord(rec auditlog.Record) string {
	e := rec.Entry
	line := fmt.Sprintf("%s %-28s %s", e.Date.Format(time.TimeOnly), e.Type, describe(e.Message))
	if e.Count > 1 {
		line += fmt.Sprintf(" (x%d)", e.Count)
	}
	return line
}

func init() {
	tailCmd.Flags().StringVar(&redisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "redis address")
	tailCmd.Flags().StringVar(&redisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "redis password")
	tailCmd.Flags().BoolVar(&tailJSON, "json", false, "print raw JSON records")
}
