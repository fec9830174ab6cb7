package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagesearch/internal/tools"
)

func newServeCmd(a *app) *cobra.Command {
	var transport string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the image tools over MCP",
		Long: `Starts an MCP server exposing the search_images, download_image and
analyze_images tools.

The stdio transport (default) is what desktop MCP hosts launch. The http
transport serves the streamable HTTP endpoint at /mcp plus /healthcheck.`,
		Example: `  # Launched by an MCP host
  imagesearch serve

  # Streamable HTTP on a custom port
  imagesearch serve --transport http --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.provider()
			if err != nil {
				return err
			}

			mcpServer := tools.NewServer(tools.New(provider), a.version)

			switch transport {
			case "stdio":
				return serveStdio(cmd.Context(), mcpServer)
			case "http":
				return serveHTTP(cmd.Context(), mcpServer, addr)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport to serve on (stdio or http)")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address for the http transport")

	return cmd
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer) error {
	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	slog.Info("Serving MCP over stdio", "server", tools.ServerName)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer))
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Serving MCP over streamable HTTP", "addr", addr, "endpoint", "/mcp")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
