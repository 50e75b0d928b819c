package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gemgate",
		Short: "gemgate serves a legacy AI workflow API on top of Google Gemini.",
		Long: `gemgate is an HTTP gateway that keeps a fixed legacy client contract
(question generation, metadata extraction, grounded answers, E-E-A-T
assessment) working against the Gemini API, with response caching and
SSE streaming.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.gemgate.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewCacheCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
