// Command routectl queries the hosted routing API from the terminal using the same
// configuration and services as the routing server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/config"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/traffic"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/latest"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/routingapi"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	apiURL  string
	token   string
	timeout time.Duration
	verbose bool
}

// services is what a subcommand needs to do its work.
type services struct {
	routes  *application.RouteService
	tables  *application.TableService
	geocode *application.GeocodeService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "routectl",
		Short:         "Query routes, matrices and places from the routing API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Routing API base URL (default from ROUTING_ROUTING_API_URL)")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "Routing API access token (default from ROUTING_ROUTING_API_TOKEN)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Upstream request timeout (default from ROUTING_ROUTING_API_TIMEOUT)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRouteCmd(flags),
		newTableCmd(flags),
		newGeocodeCmd(flags),
		newColorCmd(),
	)
	return root
}

// buildServices wires the application services the way the server does, minus
// persistence, events and debounce.
func buildServices(flags *globalFlags) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.apiURL != "" {
		cfg.RoutingAPI.BaseURL = flags.apiURL
	}
	if flags.token != "" {
		cfg.RoutingAPI.Token = flags.token
	}
	if flags.timeout > 0 {
		cfg.RoutingAPI.Timeout = flags.timeout
	}

	log := zap.NewNop()
	if flags.verbose {
		if log, err = logger.NewNamed("development", "routectl"); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	client, err := routingapi.NewClient(routingapi.Config{
		BaseURL: cfg.RoutingAPI.BaseURL,
		Token:   cfg.RoutingAPI.Token,
		Timeout: cfg.RoutingAPI.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	scale := traffic.DefaultGradient()
	coordinator := latest.NewCoordinator(0)
	publisher := kafka.NopPublisher{}
	return &services{
		routes:  application.NewRouteService(client, coordinator, scale, publisher, log),
		tables:  application.NewTableService(client, coordinator, scale, publisher, log),
		geocode: application.NewGeocodeService(client, log),
	}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
