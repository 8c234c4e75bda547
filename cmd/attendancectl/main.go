// Command attendancectl is an operator CLI for the attendance core: it
// computes distances, checks readings against configured fences, and
// resolves addresses through the geocoder.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/k-j-hyun/HRMS-jjpartners/attendance"
	"github.com/k-j-hyun/HRMS-jjpartners/config"
	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/geocode"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

func main() {
	root := &cobra.Command{
		Use:           "attendancectl",
		Short:         "Operator tooling for the geofenced attendance core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(distanceCmd(), fenceCmd(), geocodeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func distanceCmd() *cobra.Command {
	var fromLat, fromLon, toLat, toLon float64

	cmd := &cobra.Command{
		Use:   "distance",
		Short: "Compute the great-circle distance between two coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			from := model.Coordinate{Lat: fromLat, Lon: fromLon}
			to := model.Coordinate{Lat: toLat, Lon: toLon}
			for _, c := range []model.Coordinate{from, to} {
				if err := c.Validate(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.1f m\n", geo.DistanceMeters(from, to))
			return nil
		},
	}
	cmd.Flags().Float64Var(&fromLat, "from-lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&fromLon, "from-lon", 0, "origin longitude")
	cmd.Flags().Float64Var(&toLat, "to-lat", 0, "destination latitude")
	cmd.Flags().Float64Var(&toLon, "to-lon", 0, "destination longitude")
	return cmd
}

func fenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fence",
		Short: "Inspect configured work-site fences",
	}
	cmd.AddCommand(fenceCheckCmd(), fenceListCmd())
	return cmd
}

func fenceCheckCmd() *cobra.Command {
	var (
		sitesPath string
		fenceID   string
		lat, lon  float64
		accuracyM float64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Classify a location reading against a configured fence",
		RunE: func(cmd *cobra.Command, args []string) error {
			fences, err := config.LoadSites(sitesPath)
			if err != nil {
				return err
			}
			var fence model.GeoFence
			found := false
			for _, f := range fences {
				if f.ID == fenceID {
					fence, found = f, true
					break
				}
			}
			if !found {
				return fmt.Errorf("fence %q not present in %s", fenceID, sitesPath)
			}

			pos := model.Coordinate{Lat: lat, Lon: lon}
			if err := pos.Validate(); err != nil {
				return err
			}

			now := time.Now().UTC()
			class := attendance.DefaultValidator().Validate(fence, model.LocationReading{
				Position:   pos,
				AccuracyM:  accuracyM,
				CapturedAt: now,
				ReceivedAt: now,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%s (fence %s, accuracy %.1f m)\n", class, fence.ID, accuracyM)
			return nil
		},
	}
	cmd.Flags().StringVar(&sitesPath, "sites", "configs/sites.yaml", "path to the YAML fence definitions")
	cmd.Flags().StringVar(&fenceID, "fence", "", "fence ID to check against")
	cmd.Flags().Float64Var(&lat, "lat", 0, "reading latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "reading longitude")
	cmd.Flags().Float64Var(&accuracyM, "accuracy", 10, "reported GPS accuracy in meters")
	_ = cmd.MarkFlagRequired("fence")
	return cmd
}

func fenceListCmd() *cobra.Command {
	var sitesPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured work-site fences",
		RunE: func(cmd *cobra.Command, args []string) error {
			fences, err := config.LoadSites(sitesPath)
			if err != nil {
				return err
			}
			for _, f := range fences {
				switch f.Kind {
				case model.FencePolygon:
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tpolygon(%d vertices)\t%s\n", f.ID, f.Name, len(f.Ring), f.CheckOut)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tcircle(%.0f m)\t%s\n", f.ID, f.Name, f.RadiusM, f.CheckOut)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sitesPath, "sites", "configs/sites.yaml", "path to the YAML fence definitions")
	return cmd
}

func geocodeCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates via the Kakao API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := apiKey
			if key == "" {
				key = os.Getenv("KAKAO_REST_API_KEY")
			}
			if key == "" {
				return fmt.Errorf("no API key: pass --api-key or set KAKAO_REST_API_KEY")
			}

			client := geocode.NewKakaoClient(key)
			pos, err := client.Geocode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.7f %.7f\n", pos.Lat, pos.Lon)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Kakao REST API key (defaults to KAKAO_REST_API_KEY)")
	return cmd
}
