package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SourceResponse represents the /sources/{id} API response.
type SourceResponse struct {
	SourceID    string `json:"sourceId"`
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated"`
}

// SourceCmd creates the source command.
func SourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source <source-id>",
		Short: "Show ingestion status for a knowledge source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSource(cmd, args[0], outputJSON)
		},
	}
}

func runSource(cmd *cobra.Command, sourceID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp SourceResponse
	if err := api.Get("/sources/"+sourceID, &resp); err != nil {
		return fmt.Errorf("source lookup failed: %w", err)
	}

	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Source %s: %s (updated %s)\n", resp.SourceID, resp.Status, resp.LastUpdated)
	return nil
}
