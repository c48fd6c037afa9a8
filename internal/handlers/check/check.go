package check

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/internal/core/port/guard"
	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/parser"
	"github.com/kondukto-io/pinguard/pkg/reporter"
)

// Run resolves and checks every URL of args, writes one report event per
// URL and prints the report table. It fails when at least one URL is blocked.
func Run(cmd *cobra.Command, args []string, uc guard.UseCase) error {
	if len(args) == 0 {
		return errors.New("at least one url is required")
	}

	report := reporter.NewReporter(viper.GetString(parser.KeyOutputFileName))
	if report.Err != nil {
		return report.Err
	}
	defer report.Close()

	var blocked int
	for _, raw := range args {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("failed to parse url [%s]: %w", raw, err)
		}

		target, resolveErr := uc.Resolve(cmd.Context(), u)

		event := reporter.NewEvent(u, target, resolveErr)
		if err := report.WriteEvent(event); err != nil {
			logger.Log.Warnf("failed to report event: %v", err)
		}

		if resolveErr != nil {
			blocked++
			logger.Log.Errorf("[%s] %s: %v", event.Policy, event.URL, resolveErr)
			continue
		}

		logger.Log.Infof("[%s] %s -> %s:%d (Host: %q)",
			event.Policy,
			event.URL,
			event.DestinationAddress,
			event.DestinationPort,
			event.HostHeader,
		)
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		if err := report.PrintReportTable(); err != nil {
			logger.Log.Warnf("failed to print report: %v", err)
		}
	}

	if blocked > 0 {
		return fmt.Errorf("%d of %d url(s) blocked", blocked, len(args))
	}

	return nil
}
