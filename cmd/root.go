package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rgmcp",
	Short: "rgmcp - ripgrep MCP server confined to a sandbox root",
	Long: `rgmcp exposes ripgrep code search as an MCP (Model Context Protocol)
tool over stdin/stdout. Every search is confined to a configured root
directory; paths that resolve outside it are rejected.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
}
