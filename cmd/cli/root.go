package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/parser"
)

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

var (
	verbose    bool
	logFormat  string
	configFile string
	version    string
	commit     string
	buildDate  string
)

var rootCmd = cobra.Command{
	Use:     "pinguard",
	Short:   "Outbound request guard: resolves, checks and pins HTTP requests to allowed addresses",
	Version: versionFormatter(version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var logLevel = "info"
		if verbose {
			logLevel = "debug"
		}

		logger.SetLevel(logLevel)
		logger.SetFormat(logFormat)

		return parser.Load(viper.GetViper(), configFile)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "more logs")
	flags.StringVar(&logFormat, "log-format", "text", "log format (text || json)")
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")

	flags.StringSlice("deny", nil, "denied networks in CIDR notation (8.0.0.0/8, 1.2.3.4)")
	flags.StringSlice("allow", nil, "allowed networks, override denied ones")
	flags.Bool("deny-private-ranges", false, "deny RFC1918 and loopback addresses")
	flags.Bool("deny-reserved-ranges", false, "deny RFC6890 special-purpose addresses")
	flags.Bool("allow-localhost", false, "allow 127.0.0.1 even if loopback is denied")
	flags.StringSlice("denied-hosts", nil, "hostname patterns that are never contacted (*.internal)")
	flags.StringArray("resolve", nil, "static resolution entry host=ip[,ip] (repeatable)")
	flags.String("nameserver", "", "DNS server (ip:port) used instead of the system resolver")
	flags.Duration("resolve-timeout", 0, "timeout of a single hostname resolution")
	flags.StringP("output-file-name", "o", "", "output file name")

	bindings := map[string]string{
		"verbose":              "verbose",
		"deny":                 parser.KeyDeny,
		"allow":                parser.KeyAllow,
		"deny-private-ranges":  parser.KeyDenyPrivate,
		"deny-reserved-ranges": parser.KeyDenyReserved,
		"allow-localhost":      parser.KeyAllowLocalhost,
		"denied-hosts":         parser.KeyDeniedHosts,
		"resolve":              parser.KeyResolve,
		"nameserver":           parser.KeyNameserver,
		"resolve-timeout":      parser.KeyResolveTimeout,
		"output-file-name":     parser.KeyOutputFileName,
	}
	for flag, key := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(args []string) {
	rootCmd.SetArgs(args)

	rootCmd.AddCommand(initCheckCommand())
	rootCmd.AddCommand(initFetchCommand())
	rootCmd.AddCommand(initReportCommand())

	if err := rootCmd.Execute(); err != nil {
		qwe(exitCodeError, err, "failed to execute root command")
	}
}

func versionFormatter(ver, commit, buildDate string) string {
	if ver == "" && buildDate == "" && commit == "" {
		return "pinguard version (built from source)"
	}

	return fmt.Sprintf("%s (build date: %s commit: %s)", ver, buildDate, commit)
}

// qwe quits with error. If there are messages, wraps error with message
func qwe(code int, err error, messages ...string) {
	for _, m := range messages {
		err = fmt.Errorf("%s: %w", m, err)
	}

	logger.Log.Errorf("%v", err)
	os.Exit(code)
}

// qwm quits with message
func qwm(code int, message string) {
	logger.Log.Info(message)
	os.Exit(code)
}
