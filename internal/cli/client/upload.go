package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UploadResponse represents the /upload API response.
type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var (
		sourceID   string
		domainTag  string
		entityType string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document for ingestion",
		Long:  "Uploads a PDF or Word document and ingests it into the similarity index.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], sourceID, domainTag, entityType, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&sourceID, "source-id", "s", "", "Knowledge source ID (required)")
	cmd.Flags().StringVarP(&domainTag, "domain", "d", "", "Domain tag for ingested chunks")
	cmd.Flags().StringVarP(&entityType, "entity-type", "t", "", "Entity type for ingested chunks")
	_ = cmd.MarkFlagRequired("source-id")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath, sourceID, domainTag, entityType string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	fields := map[string]string{
		"sourceId":   sourceID,
		"domain":     domainTag,
		"entityType": entityType,
	}

	var resp UploadResponse
	if err := api.UploadFile("/upload", filePath, fields, &resp); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded. Document ID: %s\n", resp.DocumentID)
	return nil
}
