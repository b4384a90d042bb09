package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
)

func newRouteCmd(flags *globalFlags) *cobra.Command {
	var (
		from, to     string
		via          []string
		profile      string
		format       string
		alternatives bool
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Compute a route between two points, optionally via waypoints",
		Example: `  routectl route --from 3.1579,101.7116 --to 3.1186,101.6769
  routectl route --from 3.1579,101.7116 --via 3.1290,101.6790 --to 3.1186,101.6769 --format polyline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := geo.ParseCoordinate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			destination, err := geo.ParseCoordinate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			waypoints := make([]geo.Coordinate, len(via))
			for i, v := range via {
				if waypoints[i], err = geo.ParseCoordinate(v); err != nil {
					return fmt.Errorf("--via %d: %w", i+1, err)
				}
			}
			points, err := route.NewPoints(origin, destination, waypoints...)
			if err != nil {
				return err
			}

			svc, err := buildServices(flags)
			if err != nil {
				return err
			}
			result, err := svc.routes.ComputeRoute(cmd.Context(), "", application.ComputeRouteRequest{
				Points:       points,
				Profile:      profile,
				Geometry:     format,
				Alternatives: alternatives,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Origin as lat,lng")
	cmd.Flags().StringVar(&to, "to", "", "Destination as lat,lng")
	cmd.Flags().StringArrayVar(&via, "via", nil, "Waypoint as lat,lng (repeatable, in order)")
	cmd.Flags().StringVar(&profile, "profile", string(route.ProfileDrivingTraffic), "Routing profile")
	cmd.Flags().StringVar(&format, "format", string(geo.FormatGeoJSON), "Geometry format: geojson, polyline or polyline6")
	cmd.Flags().BoolVar(&alternatives, "alternatives", false, "Also return alternative routes")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newTableCmd(flags *globalFlags) *cobra.Command {
	var (
		coords       []string
		sources      []int
		destinations []int
		profile      string
		withTraffic  bool
	)

	cmd := &cobra.Command{
		Use:     "table",
		Short:   "Compute a duration/distance matrix",
		Example: `  routectl table --coord 3.1579,101.7116 --coord 3.1186,101.6769 --coord 3.1290,101.6790 --traffic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]geo.Coordinate, len(coords))
			for i, c := range coords {
				var err error
				if parsed[i], err = geo.ParseCoordinate(c); err != nil {
					return fmt.Errorf("--coord %d: %w", i+1, err)
				}
			}

			svc, err := buildServices(flags)
			if err != nil {
				return err
			}
			result, err := svc.tables.ComputeTable(cmd.Context(), "", application.ComputeTableRequest{
				Coordinates:  parsed,
				Sources:      sources,
				Destinations: destinations,
				Profile:      profile,
				Traffic:      withTraffic,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVar(&coords, "coord", nil, "Coordinate as lat,lng (repeatable)")
	cmd.Flags().IntSliceVar(&sources, "sources", nil, "Source indices (default all)")
	cmd.Flags().IntSliceVar(&destinations, "destinations", nil, "Destination indices (default all)")
	cmd.Flags().StringVar(&profile, "profile", string(route.ProfileDriving), "Routing profile")
	cmd.Flags().BoolVar(&withTraffic, "traffic", false, "Compare traffic-aware and free-flow durations")
	return cmd
}

func newGeocodeCmd(flags *globalFlags) *cobra.Command {
	var (
		limit     int
		proximity string
	)

	cmd := &cobra.Command{
		Use:   "geocode <query>",
		Short: "Search for a place by name or address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var near *geo.Coordinate
			if proximity != "" {
				p, err := geo.ParseCoordinate(proximity)
				if err != nil {
					return fmt.Errorf("--near: %w", err)
				}
				near = &p
			}

			svc, err := buildServices(flags)
			if err != nil {
				return err
			}
			places, err := svc.geocode.Search(cmd.Context(), strings.Join(args, " "), limit, near)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), places)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of results")
	cmd.Flags().StringVar(&proximity, "near", "", "Bias results towards lat,lng")
	return cmd
}

func newColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <ratio>",
		Short: "Show the traffic-impact colour for a traffic/free-flow duration ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
				return fmt.Errorf("ratio must be a finite number, got %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), traffic.NewImpact(&ratio, traffic.DefaultGradient()))
		},
	}
}
