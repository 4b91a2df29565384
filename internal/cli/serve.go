package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gemini2mcp/internal/config"
	"gemini2mcp/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdio MCP server",
	Long:  "Reads JSON-RPC requests from stdin and writes responses to stdout until the host closes the pipe or the process receives SIGINT/SIGTERM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{
			ConfigPath: globalFlags.ConfigPath,
			Overrides:  overridesFromFlags(),
		})
		if err != nil {
			exitWith(ExitConfigInvalid, err.Error())
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := mcp.NewServer(*cfg, os.Stdin, os.Stdout)
		return srv.Serve(ctx)
	},
}

func overridesFromFlags() *config.Overrides {
	o := &config.Overrides{}
	if globalFlags.Model != "" {
		o.GeminiModel = &globalFlags.Model
	}
	if globalFlags.BaseURL != "" {
		o.GeminiBaseURL = &globalFlags.BaseURL
	}
	return o
}
