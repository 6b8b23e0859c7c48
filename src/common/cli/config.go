// Package cli holds the Cobra and Viper plumbing shared by bazaard and bazaarctl.
package cli

import (
	"fmt"
	"strings"

	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/bitswalk/bazaar/src/common/paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConfigOptions controls how InitConfig locates configuration
type ConfigOptions struct {
	// ConfigFile is an explicit path given with --config
	ConfigFile string
	// ConfigName is the file name without extension
	ConfigName string
	ConfigType string
	// EnvPrefix maps keys to environment variables, e.g. BAZAARD_SERVER_PORT
	EnvPrefix   string
	SearchPaths []string
}

// DefaultConfigOptions returns the standard search locations for a bazaar binary
func DefaultConfigOptions(configName, envPrefix string) ConfigOptions {
	return ConfigOptions{
		ConfigName: configName,
		ConfigType: "yaml",
		EnvPrefix:  envPrefix,
		SearchPaths: []string{
			"/etc/bazaar",
			"$HOME/.config/bazaar",
			".",
		},
	}
}

// InitConfig wires Viper to the config file and the environment and returns
// the file that was read. A missing config file is not an error and yields "".
func InitConfig(opts ConfigOptions) (string, error) {
	if opts.ConfigFile != "" {
		viper.SetConfigFile(paths.Expand(opts.ConfigFile))
	} else {
		viper.SetConfigName(opts.ConfigName)
		viper.SetConfigType(opts.ConfigType)
		for _, searchPath := range opts.SearchPaths {
			viper.AddConfigPath(paths.Expand(searchPath))
		}
	}

	if opts.EnvPrefix != "" {
		viper.SetEnvPrefix(opts.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return "", fmt.Errorf("error reading config file: %w", err)
		}
		return "", nil
	}

	return viper.ConfigFileUsed(), nil
}

// RegisterLogFlags adds --log-output and --log-level to cmd
func RegisterLogFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-output", "auto", "Log output destination (auto, stdout, journald)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	_ = viper.BindPFlag("log.output", cmd.PersistentFlags().Lookup("log-output"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("log.output", "auto")
	viper.SetDefault("log.level", "info")
}

// RegisterConfigFlag adds --config to cmd
func RegisterConfigFlag(cmd *cobra.Command, cfgFile *string, defaultPath string) {
	cmd.PersistentFlags().StringVar(cfgFile, "config", "", fmt.Sprintf("config file (default: %s)", defaultPath))
}

// InitLogger builds a logger from the log.* keys. Call it after InitConfig.
func InitLogger(prefix string) *logs.Logger {
	return logs.New(logs.Config{
		Output: logs.LogOutput(viper.GetString("log.output")),
		Level:  viper.GetString("log.level"),
		Prefix: prefix,
	})
}

// BindFlags binds local flags of cmd to Viper keys, flag name to key. A flag
// missing from cmd is an error naming it.
func BindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, viperKey := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("flag --%s is not defined on %s", flagName, cmd.Name())
		}
		if err := viper.BindPFlag(viperKey, flag); err != nil {
			return fmt.Errorf("failed to bind --%s to %s: %w", flagName, viperKey, err)
		}
	}
	return nil
}

// BindPersistentFlag binds a persistent flag to a Viper key
func BindPersistentFlag(cmd *cobra.Command, flagName, viperKey string) error {
	return viper.BindPFlag(viperKey, cmd.PersistentFlags().Lookup(flagName))
}

// GetExpandedString reads a Viper string and expands ~ and $VARS
func GetExpandedString(key string) string {
	return paths.Expand(viper.GetString(key))
}
