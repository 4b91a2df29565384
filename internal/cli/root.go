package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess       = 0
	ExitGenericError  = 1
	ExitConfigInvalid = 2
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	Model      string
	BaseURL    string
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "gemini2mcp",
	Short: "Stdio MCP server exposing Gemini search and file-analysis tools",
	Long:  "gemini2mcp exposes Gemini-backed search and file-analysis tools to any MCP host over standard input/output.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", ".gemini2mcp.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Model, "model", "", "Gemini model id (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.BaseURL, "base-url", "", "Gemini API base URL (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns an error; exit code is set by RunE.
func Execute() error {
	return rootCmd.Execute()
}

// exitWith prints message to stderr and exits with code.
func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
