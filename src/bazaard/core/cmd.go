// Package core provides the bazaard commands and the HTTP server.
package core

import (
	"fmt"
	"os"

	"github.com/bitswalk/bazaar/src/common/cli"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/bitswalk/bazaar/src/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	log = logs.NewDefault()

	cfgFile string
)

// Linker variables, set with -ldflags "-X ..."
var (
	Version        = "dev"
	ReleaseName    = "Agora"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bazaard",
	Short: "Bazaar marketplace API server",
	Long: `bazaard serves the bazaar marketplace REST API: accounts, categories,
products and reviews.

Access to every mutating endpoint is controlled by bearer tokens and the
caller's current role (buyer, seller or admin).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), VersionInfo.Full())
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
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "/etc/bazaar/bazaard.yaml")
	cli.RegisterLogFlags(rootCmd)

	// Server flags
	rootCmd.Flags().IntP("port", "p", 8000, "Port to listen on")
	rootCmd.Flags().StringP("bind", "b", "0.0.0.0", "Address to bind to")
	rootCmd.Flags().Bool("tls-enabled", false, "Enable native HTTPS/TLS support")
	rootCmd.Flags().String("tls-cert", "", "Path to TLS certificate file (PEM)")
	rootCmd.Flags().String("tls-key", "", "Path to TLS private key file (PEM)")

	// Database flags; persistent so that `admin create` writes to the same file
	rootCmd.PersistentFlags().String("db-path", "~/.bazaard/bazaar.db", "Path to persist database on shutdown")

	// Auth flags
	rootCmd.Flags().String("secret-key", "", "Token signing secret (generated and stored encrypted when empty)")
	rootCmd.Flags().Duration("access-ttl", 0, "Access token lifetime (default 30m)")
	rootCmd.Flags().Duration("refresh-ttl", 0, "Refresh token lifetime (default 168h)")

	// Storage flags
	rootCmd.Flags().String("storage-type", "local", "Image storage backend type: 'local' or 's3'")
	rootCmd.Flags().String("storage-path", "~/.bazaard/images", "Local storage path (for local backend)")
	rootCmd.Flags().String("s3-endpoint", "", "S3-compatible storage endpoint URL")
	rootCmd.Flags().String("s3-region", "us-east-1", "S3 region")
	rootCmd.Flags().String("s3-bucket", "bazaar-images", "S3 bucket for product images")
	rootCmd.Flags().String("s3-access-key", "", "S3 access key ID")
	rootCmd.Flags().String("s3-secret-key", "", "S3 secret access key")
	rootCmd.Flags().Bool("s3-path-style", true, "Use path-style addressing for S3")

	if err := cli.BindFlags(rootCmd, map[string]string{
		"port":          "server.port",
		"bind":          "server.bind",
		"tls-enabled":   "server.tls.enabled",
		"tls-cert":      "server.tls.cert_path",
		"tls-key":       "server.tls.key_path",
		"secret-key":    "auth.secret_key",
		"access-ttl":    "auth.access_ttl",
		"refresh-ttl":   "auth.refresh_ttl",
		"storage-type":  "storage.type",
		"storage-path":  "storage.local.path",
		"s3-endpoint":   "storage.s3.endpoint",
		"s3-region":     "storage.s3.region",
		"s3-bucket":     "storage.s3.bucket",
		"s3-access-key": "storage.s3.access_key",
		"s3-secret-key": "storage.s3.secret_key",
		"s3-path-style": "storage.s3.path_style",
	}); err != nil {
		panic(err)
	}
	_ = cli.BindPersistentFlag(rootCmd, "db-path", "database.path")

	setDefaults()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(adminCmd)
}

// setDefaults registers the default value of every configuration key
func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("server.tls.enabled", false)
	viper.SetDefault("server.tls.cert_path", "")
	viper.SetDefault("server.tls.key_path", "")
	viper.SetDefault("server.trusted_proxies", []string{})
	viper.SetDefault("database.path", "~/.bazaard/bazaar.db")

	// Auth defaults
	viper.SetDefault("auth.secret_key", "")
	viper.SetDefault("auth.algorithm", "HS256")
	viper.SetDefault("auth.issuer", "bazaard")
	viper.SetDefault("auth.access_ttl", "30m")
	viper.SetDefault("auth.refresh_ttl", "168h")
	viper.SetDefault("auth.bcrypt_cost", 10)

	// Security defaults
	viper.SetDefault("security.master_key_path", "~/.bazaard/master.key")
	viper.SetDefault("security.rate_limit.enabled", true)
	viper.SetDefault("security.rate_limit.auth_per_min", 10)
	viper.SetDefault("security.rate_limit.api_per_min", 120)

	// Storage defaults
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.path", "~/.bazaard/images")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.bucket", "bazaar-images")
	viper.SetDefault("storage.s3.path_style", true)
	viper.SetDefault("storage.max_image_size", 5<<20)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	opts := cli.DefaultConfigOptions("bazaard", "BAZAARD")
	opts.SearchPaths = append(opts.SearchPaths, "~/.bazaard")
	opts.ConfigFile = cfgFile

	used, err := cli.InitConfig(opts)
	if err != nil {
		return err
	}

	log = cli.InitLogger("bazaard")
	if used != "" {
		log.Debug("Using config file", "path", used)
	}
	return nil
}
