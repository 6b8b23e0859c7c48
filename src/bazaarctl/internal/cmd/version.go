package cmd

import (
	"context"
	"fmt"

	"github.com/bitswalk/bazaar/src/bazaarctl/internal/output"
	"github.com/bitswalk/bazaar/src/common/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Shows the bazaarctl client version and optionally the server version.`,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("server", false, "Also show server version")
}

func runVersion(cmd *cobra.Command, args []string) error {
	showServer, _ := cmd.Flags().GetBool("server")

	var serverInfo *version.Info
	var serverErr error
	if showServer {
		if err := initConfig(); err != nil {
			return err
		}
		serverInfo, serverErr = fetchServerVersion()
	}

	result := map[string]interface{}{"client": VersionInfo.Runtime()}
	if serverErr != nil {
		result["server_error"] = serverErr.Error()
	} else if serverInfo != nil {
		result["server"] = serverInfo
	}

	return output.PrintFormatted(getOutputFormat(), result, func() error {
		output.PrintMessage("Client: " + VersionInfo.Full())
		switch {
		case serverErr != nil:
			output.PrintMessage(fmt.Sprintf("\nServer: error: %v", serverErr))
		case serverInfo != nil:
			output.PrintMessage("\nServer: " + serverInfo.Full())
		}
		return nil
	})
}

func fetchServerVersion() (*version.Info, error) {
	var resp version.Info
	if err := getClient().Get(context.Background(), "/version", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
