package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenboard/lumenboard/internal/cli"
	"github.com/lumenboard/lumenboard/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lumen",
		Short: "Lumen CLI - Semantic knowledge search",
		Long: `Lumen CLI provides commands to ingest documents and query the similarity index.

Environment variables:
  LUMEN_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SimilarCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.CacheCmd())
	rootCmd.AddCommand(client.SourceCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
