package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CacheEntryStats represents one cached query in the stats response.
type CacheEntryStats struct {
	Query        string  `json:"query"`
	AgeMinutes   float64 `json:"ageMinutes"`
	ResultsCount int     `json:"resultsCount"`
}

// CacheStatsResponse represents the GET /cache-stats API response.
type CacheStatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		CacheSize int               `json:"cacheSize"`
		Entries   []CacheEntryStats `json:"entries"`
	} `json:"stats"`
}

// CacheClearResponse represents the DELETE /cache-stats API response.
type CacheClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CacheCmd creates the cache command group.
func CacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the search cache",
	}

	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show search cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCacheStats(cmd, outputJSON)
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the search cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCacheClear(cmd, outputJSON)
		},
	}
}

func runCacheStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp CacheStatsResponse
	if err := api.Get("/cache-stats", &resp); err != nil {
		return fmt.Errorf("cache stats failed: %w", err)
	}

	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Cache size: %d\n", resp.Stats.CacheSize)
	for _, entry := range resp.Stats.Entries {
		fmt.Printf("  %s  (age %.1fm, %d results)\n", entry.Query, entry.AgeMinutes, entry.ResultsCount)
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp CacheClearResponse
	if err := api.Delete("/cache-stats", &resp); err != nil {
		return fmt.Errorf("cache clear failed: %w", err)
	}

	if outputJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Message)
	return nil
}
