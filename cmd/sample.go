package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/pkg/places"
)

var samplePlaceID string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Preview the competitive peer sample for a place",
	Long:  "Runs only the Places sampling pass and prints the nearby dentists that would anchor the competitive snapshot. Useful for checking radius and cap settings before a full diagnosis.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Places.Key == "" {
			return eris.New("places.key is required for sampling (DIAGNOSIS_PLACES_KEY)")
		}
		ctx := cmd.Context()

		client := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))

		details, err := client.PlaceDetails(ctx, samplePlaceID)
		if err != nil {
			return eris.Wrap(err, "place details")
		}
		if details.Location == nil {
			return eris.Errorf("place %s has no location", samplePlaceID)
		}

		resp, err := client.NearbySearch(ctx, places.NearbySearchRequest{
			IncludedTypes:  []string{"dentist"},
			MaxResultCount: cfg.Places.MaxPeers + 1,
			LocationRestriction: places.LocationRestriction{
				Circle: places.Circle{
					Center: *details.Location,
					Radius: cfg.Places.RadiusMeters,
				},
			},
		})
		if err != nil {
			return eris.Wrap(err, "nearby search")
		}

		var peers []model.Peer
		for _, place := range resp.Places {
			if place.ID == samplePlaceID || len(peers) >= cfg.Places.MaxPeers {
				continue
			}
			peers = append(peers, model.Peer{
				PlaceID:     place.ID,
				Name:        place.DisplayName.Text,
				Rating:      place.Rating,
				ReviewCount: place.UserRatingCount,
			})
		}

		fmt.Fprintf(os.Stdout, "%s (%.1f stars, %d reviews)\n\n",
			details.DisplayName.Text, details.Rating, details.UserRatingCount)
		formatPeers(os.Stdout, peers)
		return nil
	},
}

func formatPeers(out io.Writer, peers []model.Peer) {
	if len(peers) == 0 {
		fmt.Fprintln(out, "No peers found within the radius.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PEER\tRATING\tREVIEWS")
	for _, p := range peers {
		_, _ = fmt.Fprintf(w, "%s\t%.1f\t%d\n", p.Name, p.Rating, p.ReviewCount)
	}
	_ = w.Flush()
}

func init() {
	sampleCmd.Flags().StringVar(&samplePlaceID, "place-id", "", "Google Place ID of the lead (required)")
	_ = sampleCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(sampleCmd)
}
