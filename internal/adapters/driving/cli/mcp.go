package cli

import (
	"fmt"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vecdocs/internal/adapters/driving/mcp"
	"github.com/custodia-labs/vecdocs/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the ingest, search and stats tools, plus the
vecdocs://stats and vecdocs://documents/{id} resources.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start a streamable HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Use --diagnostics to start a gops agent for inspecting the running process.

Examples:
  # Stdio mode (default, for Claude Desktop)
  vecdocs mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  vecdocs mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "vecdocs": {
        "command": "/path/to/vecdocs",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationServices: servicesLongLived},
	RunE:        runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("diagnostics", false, "start a gops diagnostics agent")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	diagnostics, err := cmd.Flags().GetBool("diagnostics")
	if err != nil {
		return fmt.Errorf("getting diagnostics flag: %w", err)
	}

	ports := &mcp.Ports{
		Search:   searchService,
		Document: documentService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if diagnostics {
		if err := startDiagnostics(); err != nil {
			return err
		}
	}

	startWatcher(cmd.Context())

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

func startDiagnostics() error {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		return fmt.Errorf("start gops agent: %w", err)
	}
	addCloser(func() error {
		agent.Close()
		return nil
	})
	logger.Info("gops agent listening; inspect with `gops <pid>`")
	return nil
}
