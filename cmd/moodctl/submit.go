package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/moodmap/internal/domain"
)

func newSubmitCmd() *cobra.Command {
	var r domain.Reading

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit today's reading",
		Long: `Submit a mood reading for today. The location is jittered before it is
written. A second submission on the same day prints the stored record with
"skipped": true and writes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Session.Submit(cmd.Context(), r)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().IntVar(&r.Mood, "mood", 0, "mood from 1 (worst) to 5 (best)")
	cmd.Flags().Float64Var(&r.Location.Lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&r.Location.Lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("mood")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
