package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridable at build time via -ldflags "-X gemini2mcp/internal/cli.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gemini2mcp version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gemini2mcp " + Version)
	},
}
