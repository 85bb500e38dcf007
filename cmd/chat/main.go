package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"chatrelay/internal/chatclient"
	"chatrelay/internal/config"
	"chatrelay/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.LoadClient()

	var (
		endpoint    string
		maxAttempts int
		token       string
		backoffBase time.Duration
		schedule    string
		logFile     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI relay from your terminal",
		Long:  "chat opens an interactive session against a chat relay. Requests are retried with backoff when the server is unreachable or failing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backoff, err := chatclient.BackoffSchedule(schedule, backoffBase)
			if err != nil {
				return err
			}

			opts := []chatclient.Option{
				chatclient.WithMaxAttempts(maxAttempts),
				chatclient.WithBackoff(backoff),
				chatclient.WithBearerToken(token),
			}

			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				opts = append(opts, chatclient.WithLogger(log.New(f, "chat: ", log.LstdFlags)))
			}

			surface := tui.NewSurface()
			client := chatclient.New(endpoint, surface, opts...)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := tea.NewProgram(tui.New(ctx, client))
			surface.Attach(p.Send)

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", defaults.Endpoint, "chat relay URL")
	cmd.Flags().IntVar(&maxAttempts, "attempts", defaults.MaxAttempts, "delivery attempts per message")
	cmd.Flags().StringVar(&token, "token", defaults.Token, "bearer token for the relay")
	cmd.Flags().DurationVar(&backoffBase, "backoff", defaults.BackoffBase, "base delay between retries")
	cmd.Flags().StringVar(&schedule, "backoff-schedule", "exponential", "retry delay growth: exponential or linear")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write retry diagnostics to this file")

	return cmd
}
