package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/pkg/parser"
	"github.com/kondukto-io/pinguard/pkg/reporter"
)

func initReportCommand() *cobra.Command {
	reportCMD := &cobra.Command{
		Use:   "report",
		Short: "Prints the decisions stored in the output file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var fileName = viper.GetString(parser.KeyOutputFileName)
			if err := reporter.LoadAndPrint(fileName); err != nil {
				qwe(exitCodeError, err, "failed to print report")
			}

			qwm(exitCodeSuccess, "report: "+fileName)
		},
	}

	return reportCMD
}
