package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenboard/lumenboard/internal/cli"
	"github.com/lumenboard/lumenboard/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lumend",
		Short: "Lumen daemon",
		Long:  "Lumen daemon for running the knowledge API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
