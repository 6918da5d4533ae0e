// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flotation-mcp",
		Short: "Flotation plant readings normalizer and concentrate calculator",
		Long: "Normalizes one set of flotation plant sensor readings and predicts the iron and silica " +
			"concentrate percentages. Run \"serve\" to expose the tools to an MCP client over stdio.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error or disabled")
	root.PersistentFlags().Bool("log-json", false, "Log as JSON")

	root.AddCommand(
		ServeCmd(),
		FormatCmd(),
		CalculateCmd(),
		DownloadCmd(),
	)

	return root
}
