// Command moodctl inspects and drives the mood map from the terminal: print
// the cell plan for a viewport, run one refresh cycle against the index, or
// submit today's reading.
//
// Usage:
//
//	moodctl plan  --ne 48.90,2.42 --sw 48.81,2.25
//	moodctl query --ne 48.90,2.42 --sw 48.81,2.25
//	moodctl submit --mood 4 --lat 48.8566 --lng 2.3522
//
// query and submit read the same environment (and .env) as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/moodmap/internal/app"
	"github.com/couchcryptid/moodmap/internal/config"
	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:           "moodctl",
	Short:         "Inspect and drive the mood map",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newPlanCmd(), newQueryCmd(), newSubmitCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "moodctl:", err)
		os.Exit(1)
	}
}

// buildApp loads configuration and wires a session. Logs go to stderr so
// stdout stays machine-readable.
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewCLILogger(cfg)
	return app.Build(ctx, cfg, logger, observability.NewMetricsForTesting())
}

// viewportFlags binds --ne and --sw.
type viewportFlags struct {
	ne, sw string
}

func (f *viewportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ne, "ne", "", "north-east corner as lat,lng")
	cmd.Flags().StringVar(&f.sw, "sw", "", "south-west corner as lat,lng")
	_ = cmd.MarkFlagRequired("ne")
	_ = cmd.MarkFlagRequired("sw")
}

func (f *viewportFlags) viewport() (domain.Viewport, error) {
	ne, err := parseLatLng(f.ne)
	if err != nil {
		return domain.Viewport{}, fmt.Errorf("--ne: %w", err)
	}
	sw, err := parseLatLng(f.sw)
	if err != nil {
		return domain.Viewport{}, fmt.Errorf("--sw: %w", err)
	}
	return domain.Viewport{NorthEast: ne, SouthWest: sw}, nil
}

func parseLatLng(s string) (domain.GeoPoint, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("want lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("longitude: %w", err)
	}
	return domain.GeoPoint{Lat: lat, Lng: lng}, nil
}
