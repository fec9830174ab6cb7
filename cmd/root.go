package cmd

import (
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagesearch/internal/config"
	"github.com/lehigh-university-libraries/imagesearch/internal/logging"
	"github.com/lehigh-university-libraries/imagesearch/internal/serpapi"
)

// app carries state built once in the root pre-run and shared by subcommands.
type app struct {
	version   string
	cfg       *config.Config
	logCloser io.Closer
}

func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	cmd := &cobra.Command{
		Use:   "imagesearch",
		Short: "Google Images search, download and ranking tools for MCP hosts",
		Long: `imagesearch exposes image search, image download and relevance ranking as
Model Context Protocol tools backed by SerpAPI's Google Images engine.

Run "imagesearch serve" from an MCP host configuration, or use the search,
download and analyze subcommands directly from a shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.UserAgent = "imagesearch/" + a.version
			a.cfg = cfg

			_, a.logCloser = logging.Setup(cfg.Logging)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newDownloadCmd(a))
	cmd.AddCommand(newAnalyzeCmd(a))

	return cmd
}

// provider returns a SerpAPI client, failing when no API key is configured.
func (a *app) provider() (*serpapi.Client, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return serpapi.NewClient(a.cfg), nil
}
