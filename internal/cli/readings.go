// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oreflot/flotation-mcp/internal/form"
)

func FormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <file>",
		Short: "Normalize the readings in a file",
		Long: "Reads one set of readings from an xlsx, delimited or YAML/JSON file, " +
			"normalizes every input field to 3 decimal places and prints the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			state, _, err := form.New().Import(cmd.Context(), a.pipeline, args[0])
			if err != nil {
				printStatus(cmd.OutOrStdout(), state.Status)
				return err
			}
			state, _, err = state.Format()
			printReadings(cmd.OutOrStdout(), state)
			return err
		},
	}
}

func CalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate <file>",
		Short: "Compute the concentrates for the readings in a file",
		Long: "Reads one set of readings, normalizes it and predicts \"% Iron Concentrate\" and " +
			"\"% Silica Concentrate\". With --export the result is saved to the download directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			export, err := cmd.Flags().GetBool("export")
			if err != nil {
				return err
			}

			state, _, err := form.New().Import(cmd.Context(), a.pipeline, args[0])
			if err != nil {
				printStatus(cmd.OutOrStdout(), state.Status)
				return err
			}
			state, c, err := state.Calculate(cmd.Context(), a.predictor)
			if err != nil {
				printReadings(cmd.OutOrStdout(), state)
				return err
			}
			a.log.Debug("concentrates computed", "iron", c.Iron, "silica", c.Silica)

			if export {
				var path string
				state, path, err = state.Export(a.cfg.Paths.DownloadDir, time.Now())
				if err == nil {
					a.log.Info("readings exported", "path", path)
				}
			}
			printReadings(cmd.OutOrStdout(), state)
			return err
		},
	}
	cmd.Flags().Bool("export", false, "Save the result as a workbook in the download directory")
	return cmd
}
