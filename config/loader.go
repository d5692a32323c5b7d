package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/arloliu/sqlexec"
	"github.com/arloliu/sqlexec/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SQLEXEC_"

// Config file names looked up in the working directory when no path is given.
const (
	ConfigFileName    = "sqlexec.yaml"
	ConfigFileNameAlt = "sqlexec.yml"
)

// findConfigFile finds the config file to use.
// Priority: explicit path > sqlexec.yaml > sqlexec.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	return ""
}

// defaults flattens sqlexec.DefaultSettings into koanf keys.
func defaults() map[string]any {
	d := sqlexec.DefaultSettings()

	return map[string]any{
		"backend":            string(d.Backend),
		"connection_string":  d.ConnectionString,
		"command_timeout":    d.CommandTimeout,
		"validation.enabled": d.Validation.Enabled,
		"retry.enabled":      d.Retry.Enabled,
		"retry.max_attempts": d.Retry.MaxAttempts,
		"retry.delay":        d.Retry.Delay,
		"log.level":          d.Log.Level,
		"metrics.prefix":     d.Metrics.Prefix,
	}
}

// envKey transforms SQLEXEC_RETRY__MAX_ATTEMPTS into retry.max_attempts.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	return strings.ReplaceAll(s, "__", ".")
}

// Load loads settings from defaults, the config file, environment variables
// and flags. The result is decoded but not validated.
//
// Parameters:
//   - cfgFile: Config file path; empty looks for sqlexec.yaml in the working directory
//   - flags: Flag set registered with RegisterFlags (may be nil); only changed flags apply
//
// Returns:
//   - *sqlexec.Settings: The loaded settings
//   - error: Read or decode failure
func Load(cfgFile string, flags *pflag.FlagSet) (*sqlexec.Settings, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Load environment variables (SQLEXEC_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Settings
	settings := &sqlexec.Settings{}
	if err := k.UnmarshalWithConf("", settings, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				backendHook(),
			),
			Result:           settings,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return settings, nil
}

// backendHook accepts backend aliases such as "mssql" or "PostgreSQL".
// An empty string is left for Settings.Validate to report.
func backendHook() mapstructure.DecodeHookFuncType {
	backendType := reflect.TypeOf(types.Backend(""))

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != backendType || from.Kind() != reflect.String {
			return data, nil
		}

		s := reflect.ValueOf(data).String()
		if strings.TrimSpace(s) == "" {
			return types.Backend(""), nil
		}

		return types.ParseBackend(s)
	}
}
