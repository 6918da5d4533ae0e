// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/oreflot/flotation-mcp/internal/tool"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the readings tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			server := newServer(a)
			a.log.Info("serving over stdio",
				"name", a.cfg.Server.Name,
				"version", a.cfg.Server.Version,
				"parsers", a.pipeline.RegisteredParsers(),
			)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func newServer(a *app) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    a.cfg.Server.Name,
		Version: a.cfg.Server.Version,
	}, nil)
	tool.Register(server, tool.NewHandlers(tool.Options{
		Predictor: a.predictor,
		Pipeline:  a.pipeline,
		Library:   a.library,
		ExportDir: a.cfg.Paths.DownloadDir,
		Logger:    a.log,
	}))
	return server
}
