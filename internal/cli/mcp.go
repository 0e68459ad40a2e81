package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/seobrief/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio transport)",
	Long: `Start the MCP (Model Context Protocol) server using stdio transport.

This lets AI assistants score keywords, pick quick wins, run research and
read your stored runs.

Add to Claude Desktop config (~/Library/Application Support/Claude/claude_desktop_config.json):

{
  "mcpServers": {
    "seobrief": {
      "command": "/path/to/seobrief",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Check if MCP is enabled
	if !a.cfg.MCP.Enabled {
		return fmt.Errorf("MCP server is disabled in config")
	}

	// Handle interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	pipeline, err := a.pipeline(ctx)
	if err != nil {
		return err
	}

	// Create MCP server
	server := mcp.New(a.db, a.cfg,
		mcp.WithPipeline(pipeline),
		mcp.WithMetrics(a.metrics),
		mcp.WithLogger(a.log),
		mcp.WithVersion(version),
	)

	a.log.Info().Msg("MCP server listening on stdio")
	return server.Start(ctx)
}
