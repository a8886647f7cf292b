package harvester

import (
	"context"
	"fmt"

	"matchharvest/pkg/boundary"
	"matchharvest/pkg/config"
	"matchharvest/pkg/crawler"
	"matchharvest/pkg/dataset"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/opendota"
	"matchharvest/pkg/ratelimit"
	"matchharvest/pkg/steam"
	"matchharvest/pkg/storage"
	"matchharvest/pkg/transport"
)

// Clients are the remote clients built from a configuration
type Clients struct {
	Transport *transport.Transport
	Steam     *steam.Client
	OpenDota  *opendota.Client
}

// NewClients builds the Steam and OpenDota clients sharing one rate limited
// transport
func NewClients(cfg *config.Config, clock ratelimit.Clock, log logger.Logger) *Clients {
	if clock == nil {
		clock = ratelimit.SystemClock{}
	}
	spacer := ratelimit.NewSpacer(clock, cfg.RateLimit.SteamInterval)
	spacer.SetInterval(steam.Service, cfg.RateLimit.SteamInterval)
	spacer.SetInterval(opendota.Service, cfg.RateLimit.OpenDotaInterval)

	t := transport.New(spacer, cfg.RateLimit.Cooldown, log)

	return &Clients{
		Transport: t,
		Steam: steam.NewClient(steam.Config{
			APIKey:         cfg.Steam.APIKey,
			BaseURL:        cfg.Steam.BaseURL,
			Timeout:        cfg.RateLimit.RequestTimeout,
			LookupAttempts: cfg.RateLimit.LookupAttempts,
			PageAttempts:   cfg.RateLimit.PageAttempts,
		}, t, log),
		OpenDota: opendota.NewClient(opendota.Config{
			BaseURL: cfg.OpenDota.BaseURL,
			Timeout: cfg.RateLimit.RequestTimeout,
		}, t, log),
	}
}

// OpenStore opens the dataset at location, local or s3://
func OpenStore(ctx context.Context, cfg *config.Config, location string, log logger.Logger) (*dataset.Store, error) {
	backend, key, err := storage.Open(ctx, location, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	return dataset.NewStore(backend, key, log), nil
}

// NewFromConfig wires a Harvester against the live services
func NewFromConfig(ctx context.Context, cfg *config.Config, progress crawler.Progress, log logger.Logger) (*Harvester, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	clients := NewClients(cfg, nil, log)

	store, err := OpenStore(ctx, cfg, cfg.Output.MatchFile, log)
	if err != nil {
		return nil, err
	}

	return New(cfg, Deps{
		Matches: clients.Steam,
		Locator: &boundary.Locator{
			Prober:    clients.OpenDota,
			MaxProbes: cfg.Fetch.BoundaryMaxProbes,
			Logger:    log,
		},
		Store:    store,
		Calls:    clients.Transport,
		Progress: progress,
		Logger:   log,
	})
}
