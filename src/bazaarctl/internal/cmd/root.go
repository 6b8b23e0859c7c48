// Package cmd implements the bazaarctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/bitswalk/bazaar/src/bazaarctl/internal/client"
	"github.com/bitswalk/bazaar/src/bazaarctl/internal/config"
	"github.com/bitswalk/bazaar/src/common/cli"
	"github.com/bitswalk/bazaar/src/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	cfgFile string

	// Output format (table, json or yaml)
	outputFormat string

	apiClient *client.Client
)

// Linker variables - set via ldflags at build time
var (
	Version        = "dev"
	ReleaseName    = "Agora"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bazaarctl",
	Short: "Bazaar CLI Client",
	Long: `bazaarctl is the command-line client for the bazaar marketplace.

It talks to the bazaard API server to log in, renew tokens and browse
categories and products.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" && !cmd.Flags().Changed("server") {
			return nil
		}
		return initConfig()
	},
}

// Execute runs the root command
func Execute() {
	VersionInfo.Version = Version
	VersionInfo.ReleaseName = ReleaseName
	VersionInfo.ReleaseVersion = ReleaseVersion
	VersionInfo.BuildDate = BuildDate
	VersionInfo.GitCommit = GitCommit

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "~/.bazaarctl/bazaarctl.yaml")

	rootCmd.PersistentFlags().StringP("url", "u", "", "bazaard server URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	cli.RegisterLogFlags(rootCmd)

	_ = cli.BindPersistentFlag(rootCmd, "url", "server.url")
	viper.SetDefault("server.url", "http://localhost:8000")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(productCmd)

	_ = rootCmd.RegisterFlagCompletionFunc("output", completionOutputFormat)
}

func completionOutputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
}

func initConfig() error {
	opts := cli.DefaultConfigOptions("bazaarctl", "BAZAARCTL")
	opts.SearchPaths = append(opts.SearchPaths, "~/.bazaarctl")
	opts.ConfigFile = cfgFile

	_, err := cli.InitConfig(opts)
	return err
}

// getClient returns the API client, creating it if needed.
// It loads the stored tokens when they belong to the configured server.
func getClient() *client.Client {
	if apiClient == nil {
		serverURL := viper.GetString("server.url")
		apiClient = client.New(serverURL)

		tokenData, err := config.LoadToken()
		if err == nil && tokenData.ServerURL == apiClient.BaseURL {
			apiClient.Token = tokenData.AccessToken
			apiClient.RefreshToken = tokenData.RefreshToken
		}
	}
	return apiClient
}

// getOutputFormat returns the current output format
func getOutputFormat() string {
	return outputFormat
}
