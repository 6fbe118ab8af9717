package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/namelens/searchrelay/internal/errors"
	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/output"
	"github.com/namelens/searchrelay/internal/relay"
)

var (
	searchFailOnUpstream bool
	searchOutput         string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run one relay query and print the chat reply",
	Long: `Run a single query through the same relay path as POST /chat and print
the reply to stdout (JSON by default, the same body the endpoint returns). Arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(searchOutput)
		if err != nil {
			return err
		}
		cfg := loadConfig()

		bundle, err := buildRelay(cmd.Context(), cfg.Search)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "search provider initialization failed")
		}

		start := time.Now()
		query := strings.Join(args, " ")
		out := bundle.relay.Handle(cmd.Context(), query)
		observability.CLILogger.Debug("Search finished",
			zap.String("outcome", string(out.Kind)),
			zap.Int("results", len(out.Results)),
			zap.Duration("duration", time.Since(start)))

		rendered, err := output.NewFormatter(format).FormatReply(query, out.Reply())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)

		if searchFailOnUpstream && out.Kind == relay.KindUpstreamError {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable,
				"Search provider unavailable", errwrap.NewExternalServiceError(relay.ReplyUpstreamError))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "json", "output format: json, table or markdown")
	searchCmd.Flags().BoolVar(&searchFailOnUpstream, "fail-on-upstream", false, "exit non-zero when the provider is unreachable")
}
