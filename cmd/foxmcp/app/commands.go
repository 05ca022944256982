// Package app provides the entry point for the foxmcp command-line
// application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/foxmcp/foxmcp/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "foxmcp",
	DisableAutoGenTag: true,
	Short:             "foxmcp bridges MCP clients to a Firefox extension",
	Long: `foxmcp is a local bridge between MCP (Model Context Protocol) clients and a
Firefox browser extension. It accepts a single extension connection over
WebSocket and exposes browser automation tools (tabs, history, bookmarks,
navigation, page content, windows, web-request monitoring) over an MCP
streamable HTTP endpoint.

Both listeners bind to the loopback interface only.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Re-create the logger now that the --debug flag is parsed.
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the foxmcp CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}
	if err := viper.BindEnv("ext-scripts", "FOXMCP_EXT_SCRIPTS"); err != nil {
		logger.Errorf("Error binding FOXMCP_EXT_SCRIPTS: %v", err)
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
