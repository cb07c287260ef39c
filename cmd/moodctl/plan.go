package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/moodmap/internal/codec"
	"github.com/couchcryptid/moodmap/internal/planner"
)

func newPlanCmd() *cobra.Command {
	var vf viewportFlags
	var precision int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the cell addresses a viewport resolves to",
		Long: `Print the covering cell addresses the planner selects for a viewport, one
per line. "@" is the root cell. No index access is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vp, err := vf.viewport()
			if err != nil {
				return err
			}
			gh, err := codec.NewGeohash(precision)
			if err != nil {
				return err
			}
			addrs, err := planner.New(gh).Plan(vp)
			if err != nil {
				return err
			}
			for _, a := range addrs {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
	vf.bind(cmd)
	cmd.Flags().IntVar(&precision, "precision", 12, "codec precision (1-12)")
	return cmd
}
