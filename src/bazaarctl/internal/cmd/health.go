package cmd

import (
	"context"

	"github.com/bitswalk/bazaar/src/bazaarctl/internal/output"
	"github.com/spf13/cobra"
)

// HealthResponse matches the server's /health response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	var resp HealthResponse
	if err := getClient().Get(context.Background(), "/health", &resp); err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), resp, func() error {
		output.PrintTable(
			[]string{"FIELD", "VALUE"},
			[][]string{
				{"Status", resp.Status},
				{"Timestamp", resp.Timestamp},
			},
		)
		return nil
	})
}
