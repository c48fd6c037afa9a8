package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/internal/core/port/guard"
	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/parser"
	"github.com/kondukto-io/pinguard/pkg/reporter"
	"github.com/kondukto-io/pinguard/pkg/transport"
	"github.com/kondukto-io/pinguard/pkg/utils"
)

// Run sends a single request through the guarded transport
func Run(cmd *cobra.Command, args []string, uc guard.UseCase) error {
	if len(args) != 1 {
		return errors.New("exactly one url is required")
	}

	u, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse url [%s]: %w", args[0], err)
	}

	if !utils.OneOfFold(u.Scheme, []string{"http", "https"}) {
		return fmt.Errorf("unsupported scheme [%s]", u.Scheme)
	}

	method, _ := cmd.Flags().GetString("method")
	headers, _ := cmd.Flags().GetStringArray("header")
	printBody, _ := cmd.Flags().GetBool("print-body")

	report := reporter.NewReporter(viper.GetString(parser.KeyOutputFileName))
	if report.Err != nil {
		return report.Err
	}
	defer report.Close()

	rt := transport.New(uc, nil).WithObserver(func(req *http.Request, target *domain.ResolvedTarget, err error) {
		if err := report.WriteEvent(reporter.NewEvent(req.URL, target, err)); err != nil {
			logger.Log.Warnf("failed to report event: %v", err)
		}
	})
	defer rt.CloseIdleConnections()

	client := &http.Client{
		Transport: rt,
		Timeout:   viper.GetDuration(parser.KeyRequestTimeout),
	}

	req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(method), u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header [%s], expected \"Key: Value\"", h)
		}
		req.Header.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	resp, err := client.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAddressNotAllowed):
			return fmt.Errorf("request blocked: %w", err)
		case errors.Is(err, domain.ErrConnectionFailed):
			return fmt.Errorf("request failed: %w", err)
		default:
			return err
		}
	}
	defer resp.Body.Close()

	pterm.Success.Printfln("%s %s", resp.Proto, resp.Status)

	if printBody {
		if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
	}

	return nil
}
