package cli

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fetchhandler "github.com/kondukto-io/pinguard/internal/handlers/fetch"
	"github.com/kondukto-io/pinguard/pkg/parser"
)

func initFetchCommand() *cobra.Command {
	fetchCMD := &cobra.Command{
		Use:   "fetch URL",
		Short: "Sends a request through the guard, pinned to the checked address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			uc, err := newGuard(cmd.Context())
			if err != nil {
				qwe(exitCodeError, err, "failed to build guard")
			}

			if err := fetchhandler.Run(cmd, args, uc); err != nil {
				qwe(exitCodeError, err, "fetch failed")
			}
		},
	}

	fetchCMD.Flags().StringP("method", "X", http.MethodGet, "request method")
	fetchCMD.Flags().StringArrayP("header", "H", nil, "request header \"Key: Value\" (repeatable)")
	fetchCMD.Flags().Bool("print-body", true, "write the response body to stdout")
	fetchCMD.Flags().Duration("request-timeout", 0, "timeout of the whole request")

	_ = viper.BindPFlag(parser.KeyRequestTimeout, fetchCMD.Flags().Lookup("request-timeout"))

	return fetchCMD
}
