package cli

import (
	"github.com/spf13/cobra"

	checkhandler "github.com/kondukto-io/pinguard/internal/handlers/check"
)

func initCheckCommand() *cobra.Command {
	checkCMD := &cobra.Command{
		Use:   "check URL...",
		Short: "Resolves the given URLs and reports whether they are allowed",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			uc, err := newGuard(cmd.Context())
			if err != nil {
				qwe(exitCodeError, err, "failed to build guard")
			}

			if err := checkhandler.Run(cmd, args, uc); err != nil {
				qwe(exitCodeError, err, "check failed")
			}
		},
	}

	checkCMD.Flags().BoolP("quiet", "q", false, "do not print the report table")

	return checkCMD
}
