package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kondukto-io/pinguard/internal/core/domain"
	"github.com/kondukto-io/pinguard/pkg/logger"
	"github.com/kondukto-io/pinguard/pkg/utils"
)

// configuration keys
const (
	KeyDeny           = "deny"
	KeyAllow          = "allow"
	KeyDenyPrivate    = "deny_private_ranges"
	KeyDenyReserved   = "deny_reserved_ranges"
	KeyAllowLocalhost = "allow_localhost"
	KeyDeniedHosts    = "denied_hosts"
	KeyResolve        = "resolve"
	KeyNameserver     = "nameserver"
	KeyResolveTimeout = "resolve_timeout"
	KeyRequestTimeout = "request_timeout"
	KeyOutputFileName = "output_file_name"
)

const envPrefix = "PINGUARD"

// aliases of the boolean keys, kept for configurations written for the
// original option names
var aliases = map[string][]string{
	KeyDenyPrivate:  {"deny_rfc1918"},
	KeyDenyReserved: {"deny_rfc6890"},
}

// SetDefaults registers the default values. The aliased boolean keys have
// none so that an alias is honoured when the key itself is absent.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDeny, []string{})
	v.SetDefault(KeyAllow, []string{})
	v.SetDefault(KeyAllowLocalhost, false)
	v.SetDefault(KeyDeniedHosts, []string{})
	v.SetDefault(KeyResolve, []string{})
	v.SetDefault(KeyNameserver, "")
	v.SetDefault(KeyResolveTimeout, 5*time.Second)
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyOutputFileName, "/tmp/pinguard.out")
}

// Load reads the configuration file (if any) and the PINGUARD_* environment
func Load(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return nil
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}

	logger.Log.Debugf("using config file: %s", v.ConfigFileUsed())

	return nil
}

// ToPolicyConfig builds the policy configuration from v
func ToPolicyConfig(v *viper.Viper) domain.PolicyConfig {
	return domain.PolicyConfig{
		Deny:           utils.SplitList(v.GetStringSlice(KeyDeny)),
		Allow:          utils.SplitList(v.GetStringSlice(KeyAllow)),
		DenyPrivate:    getBool(v, KeyDenyPrivate),
		DenyReserved:   getBool(v, KeyDenyReserved),
		AllowLocalhost: getBool(v, KeyAllowLocalhost),
	}
}

// ToHostRulesData builds the host rules data document from v
func ToHostRulesData(v *viper.Viper) *domain.HostRulesData {
	return &domain.HostRulesData{
		DeniedHosts: utils.SplitList(v.GetStringSlice(KeyDeniedHosts)),
	}
}

// ResolveEntries returns the static "host=ip" entries
func ResolveEntries(v *viper.Viper) []string {
	var entries []string
	for _, e := range v.GetStringSlice(KeyResolve) {
		// "host=ip1,ip2" must stay a single entry
		if e = strings.TrimSpace(e); e != "" {
			entries = append(entries, e)
		}
	}

	return entries
}

// getBool returns the value of key, falling back to its aliases when key
// itself was never set
func getBool(v *viper.Viper, key string) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}

	for _, alias := range aliases[key] {
		if v.IsSet(alias) {
			return v.GetBool(alias)
		}
	}

	return v.GetBool(key)
}
