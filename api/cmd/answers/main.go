// Command answers runs one task set lookup and prints the result as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sky-answers-bot/api/internal/answers"
	"sky-answers-bot/api/internal/config"
	"sky-answers-bot/api/internal/logger"
	"sky-answers-bot/api/internal/skysmart"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var pretty bool

	root := &cobra.Command{
		Use:           "answers",
		Short:         "Look up skysmart task answers",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Setup(cfg.LogLevel, pretty || cfg.LogPretty)
		},
	}
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable logs")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	root.AddCommand(newGetCmd(cfg), newHashCmd())
	return root
}

func newGetCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <link|hash>",
		Short: "Fetch the answers of a task set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := answers.ParseTaskHash(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			client := skysmart.NewClient(&http.Client{Timeout: cfg.Timeout}, skysmart.Endpoints{
				Auth:  cfg.AuthURL,
				Room:  cfg.RoomURL,
				Steps: cfg.StepsURL,
			})
			svc := answers.NewService(
				func() answers.Source { return client.NewSession() },
				answers.WithMaxTasks(cfg.MaxTasks),
			)
			list := svc.GetAnswers(ctx, hash)
			log.Info().Int("tasks", len(list)).Msg("done")
			return writeJSON(cmd, list)
		},
	}
	cmd.Flags().IntVar(&cfg.MaxTasks, "max-tasks", cfg.MaxTasks, "maximum steps to fetch")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	return cmd
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <link>",
		Short: "Print the task hash of a student link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := answers.ParseTaskHash(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
