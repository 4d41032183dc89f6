package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var (
	serveTransport string
	servePort      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio (for editor/assistant integration)
or streamable HTTP.

Examples:
  workshop serve
  workshop serve --transport http --port 8081`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "Transport mode: stdio or http")
	serveCmd.Flags().StringVar(&servePort, "port", "8081", "HTTP port (only used with --transport http)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()
	defer app.Log.Sync()

	srv := app.MCPServer()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch serveTransport {
	case "stdio":
		app.Log.Info("workshop mcp server starting", "transport", "stdio", "base_dir", app.Config.BaseDir)
		return srv.Run(ctx, &mcp.StdioTransport{})
	case "http":
		addr := ":" + servePort
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		app.Log.Info("workshop mcp server listening", "addr", addr, "base_dir", app.Config.BaseDir)
		return http.ListenAndServe(addr, handler)
	default:
		return fmt.Errorf("unknown transport %q (use stdio or http)", serveTransport)
	}
}
