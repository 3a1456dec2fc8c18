package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SimilarRequest represents the /similar API request.
type SimilarRequest struct {
	EntityID     string   `json:"entityId"`
	TopK         int      `json:"topK,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	EntityType   string   `json:"entityType,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
	UsePrecision bool     `json:"usePrecision,omitempty"`
}

// SimilarEntity represents the metadata projection of a matched entity.
type SimilarEntity struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	EntityType  string `json:"entityType"`
	Domain      string `json:"domain"`
}

// SimilarResult represents one scored match.
type SimilarResult struct {
	EntityID   string        `json:"entityId"`
	Entity     SimilarEntity `json:"entity"`
	Similarity float64       `json:"similarity"`
	MatchType  string        `json:"matchType"`
}

// SimilarResponse represents the /similar API response.
type SimilarResponse struct {
	Results []SimilarResult `json:"results"`
	Query   struct {
		EntityID   string `json:"entityId"`
		EntityName string `json:"entityName"`
	} `json:"query"`
	Meta struct {
		Count     int     `json:"count"`
		TopK      int     `json:"topK"`
		Threshold float64 `json:"threshold"`
	} `json:"meta"`
}

// SimilarCmd creates the similar command.
func SimilarCmd() *cobra.Command {
	var (
		topK         int
		domainFilter string
		entityType   string
		threshold    float64
		usePrecision bool
	)

	cmd := &cobra.Command{
		Use:   "similar <entity-id>",
		Short: "Find similar entities",
		Long:  "Queries the similarity index for entities close to the given one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			req := SimilarRequest{
				EntityID:     args[0],
				TopK:         topK,
				Domain:       domainFilter,
				EntityType:   entityType,
				UsePrecision: usePrecision,
			}
			if cmd.Flags().Changed("threshold") {
				req.Threshold = &threshold
			}

			return runSimilar(cmd, req, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of results (default 5)")
	cmd.Flags().StringVarP(&domainFilter, "domain", "d", "", "Filter candidates by domain")
	cmd.Flags().StringVarP(&entityType, "entity-type", "t", "", "Filter candidates by entity type")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity score (default 0.5)")
	cmd.Flags().BoolVar(&usePrecision, "precision", false, "Use the full-precision similarity path")

	return cmd
}

func runSimilar(cmd *cobra.Command, req SimilarRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp SimilarResponse
	if err := api.PostJSON("/similar", req, &resp); err != nil {
		return fmt.Errorf("similar query failed: %w", err)
	}

	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Similar to %s (%s): %d result(s)\n", resp.Query.EntityName, resp.Query.EntityID, resp.Meta.Count)
	for _, res := range resp.Results {
		fmt.Printf("  %.4f  [%s]  %s  (%s/%s)\n",
			res.Similarity, res.MatchType, res.Entity.Name, res.Entity.Domain, res.Entity.EntityType)
	}

	return nil
}
