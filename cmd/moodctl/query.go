package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/moodmap/internal/visual"
)

func newQueryCmd() *cobra.Command {
	var vf viewportFlags
	var rendered bool

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one refresh cycle and print the snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vp, err := vf.viewport()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.Session.Refresh(cmd.Context(), vp)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if rendered {
				return enc.Encode(visual.Render(*snap))
			}
			return enc.Encode(snap)
		},
	}
	vf.bind(cmd)
	cmd.Flags().BoolVar(&rendered, "render", false, "print map markers with icons instead of the raw snapshot")
	return cmd
}
