package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kilianp07/objreg/config"
	"github.com/kilianp07/objreg/core/configure"
	"github.com/kilianp07/objreg/core/constructor"
	coremetrics "github.com/kilianp07/objreg/core/metrics"
	"github.com/kilianp07/objreg/core/registry"
	"github.com/kilianp07/objreg/infra/logger"
	"github.com/kilianp07/objreg/infra/metrics"
	"github.com/kilianp07/objreg/internal/eventbus"
)

// Runtime bundles a registry factory with its logging, metrics and event
// plumbing, built from configuration.
type Runtime struct {
	Factory *registry.Factory
	Catalog *constructor.Catalog
	Sink    coremetrics.MetricsSink
	bus     *eventbus.Bus
	log     logger.Logger
	cfg     *config.Config

	stopCollector context.CancelFunc
	collectorDone <-chan struct{}
}

// Register is called by New with the runtime catalog before any instance is
// preloaded; use it to add application constructors.
type Register func(c *constructor.Catalog) error

// New creates a Runtime from the configuration.
func New(cfg *config.Config, register ...Register) (*Runtime, error) {
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("runtime")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	catOpts := []constructor.Option{constructor.WithLogger(logger.New("catalog"))}
	if cfg.Registry.CaseFold {
		catOpts = append(catOpts, constructor.WithCaseFold())
	}
	cat := constructor.NewCatalog(catOpts...)
	for _, reg := range register {
		if err := reg(cat); err != nil {
			return nil, fmt.Errorf("register constructors: %w", err)
		}
	}

	bus := eventbus.NewWithBuffer(cfg.Registry.EventBuffer)
	store := registry.NewStore(
		registry.WithStoreLogger(logger.New("store")),
		registry.WithStoreMetrics(sink),
	)
	f := registry.NewFactory(store, cat,
		registry.WithLogger(logger.New("registry")),
		registry.WithMetrics(sink),
		registry.WithEventBus(bus),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := metrics.StartEventCollector(ctx, bus, sink)
	logg.Infof("registry store %s ready with %d constructors", store.ID(), len(cat.Names()))

	return &Runtime{
		Factory:       f,
		Catalog:       cat,
		Sink:          sink,
		bus:           bus,
		log:           logg,
		cfg:           cfg,
		stopCollector: cancel,
		collectorDone: done,
	}, nil
}

// Preload creates the instances listed in the registry configuration.
func (r *Runtime) Preload() error {
	var errs []error
	for i, p := range r.cfg.Registry.Preload {
		if err := r.preload(p); err != nil {
			errs = append(errs, fmt.Errorf("preload[%d] %s: %w", i, p.Type, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runtime) preload(p config.InstanceConfig) error {
	inst, err := r.Factory.Obtain(p.Type, p.Args...)
	if err != nil {
		return err
	}
	if len(p.Settings) > 0 {
		if _, err := configure.Apply(inst, p.Settings); err != nil {
			return err
		}
	}
	if p.Alias != "" {
		if _, err := r.Factory.As(inst, p.Type, p.Alias); err != nil {
			return err
		}
	}
	r.log.Debugw("instance preloaded", map[string]any{"type": p.Type, "alias": p.Alias})
	return nil
}

// Events subscribes to registry lifecycle events. The channel is closed by
// Close.
func (r *Runtime) Events() <-chan eventbus.Event { return r.bus.Subscribe() }

// Run serves the metrics of the configured Prometheus sink when an address
// is set, and blocks until the context is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	addr := r.cfg.Metrics.PrometheusAddr
	if addr == "" {
		<-ctx.Done()
		return nil
	}
	r.log.Infof("serving metrics on %s", addr)
	if err := metrics.StartPromServer(ctx, addr, metrics.GathererFor(r.Sink)); err != nil {
		return fmt.Errorf("prom server: %w", err)
	}
	return nil
}

// Close stops the metrics collector, closes the event bus and flushes sinks
// that buffer points.
func (r *Runtime) Close() error {
	r.stopCollector()
	<-r.collectorDone
	r.bus.Close()
	if c, ok := r.Sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("metrics sink: %w", err)
		}
	}
	return nil
}
