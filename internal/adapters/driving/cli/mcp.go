package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lessonscout/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/lessonscout/internal/adapters/driving/mcp"
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

By default, the server communicates over stdio using JSON-RPC and acts as
the --user identity. Searches run inside this process.

Use --http to serve streamable HTTP instead. Each request must then carry a
bearer token from the config file, and tools act as that token's user.

Examples:
  # Stdio mode (for desktop assistants)
  lessonscout mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  lessonscout mcp serve --http :8081

Desktop assistant configuration:
  {
    "mcpServers": {
      "lessonscout": {
        "command": "/path/to/lessonscout",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "HTTP listen address (empty = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{sharedFeed: addr != ""})
	if err != nil {
		return err
	}
	defer rt.Close()
	printWarnings(cmd, rt.Warnings)

	if err := rt.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer drainScheduler(rt)

	server, err := mcp.NewServer(&mcp.Ports{
		Search: rt.Search,
		UserID: currentUser(),
	})
	if err != nil {
		return err
	}

	if addr != "" {
		auth := httpapi.NewTokenAuth(rt.AppSettings.Server.Tokens)
		if rt.WatchConfig != nil {
			go func() {
				if err := rt.WatchConfig(ctx, func() { reloadTokens(rt, auth) }); err != nil {
					log.Warn("config watch stopped: %v", err)
				}
			}()
		}
		// Stdout is free in HTTP mode.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr, auth)
	}

	return server.Run(ctx)
}
