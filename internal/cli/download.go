// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oreflot/flotation-mcp/internal/form"
	"github.com/oreflot/flotation-mcp/internal/sheet"
)

func DownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "download template|example",
		Short:     "Copy a reference workbook into the download directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(sheet.KindTemplate), string(sheet.KindExample)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sheet.ParseKind(args[0])
			if err != nil {
				return err
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			state, path, err := form.New().Download(cmd.Context(), a.library, kind)
			printStatus(cmd.OutOrStdout(), state.Status)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
