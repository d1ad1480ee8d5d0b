package cmd

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/objreg/app"
	"github.com/kilianp07/objreg/config"
	"github.com/kilianp07/objreg/core/constructor"
	"github.com/kilianp07/objreg/core/registry"
)

const probeType = "objreg.Probe"

// Probe is the instance type built by the self test.
type Probe struct {
	Label string `json:"label"`
	Ready bool   `json:"ready"`
}

type probes struct {
	built atomic.Int64
	delay time.Duration
}

func (p *probes) register(c *constructor.Catalog) error {
	return c.Register(probeType, func(label string) *Probe {
		p.built.Add(1)
		time.Sleep(p.delay)
		return &Probe{Label: label}
	}, constructor.WithDoc("self test probe; takes a label"))
}

func registerProbe(c *constructor.Catalog) error { return (&probes{}).register(c) }

type selftestOptions struct {
	workers int
	delay   time.Duration
	serve   bool
}

// selftestReport summarizes one self test run.
type selftestReport struct {
	Workers       int
	Constructions int64
	Distinct      int
	Key           registry.Key
	Freed         int
}

func newSelftestCmd(root *options) *cobra.Command {
	o := &selftestOptions{}
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Race concurrent Obtain calls and verify a single construction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			p := &probes{delay: o.delay}
			svc, err := app.New(cfg, p.register)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			rep, err := selftest(svc.Factory, svc.Catalog.ResolveTypeID, p, o.workers)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "workers=%d constructions=%d distinct=%d freed=%d key=%s\n",
				rep.Workers, rep.Constructions, rep.Distinct, rep.Freed, rep.Key); err != nil {
				return err
			}
			if rep.Constructions != 1 || rep.Distinct != 1 {
				return errors.New("selftest: concurrent obtain built more than one instance")
			}
			if o.serve {
				return svc.Run(cmd.Context())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 100, "number of concurrent callers")
	cmd.Flags().DurationVar(&o.delay, "delay", 20*time.Millisecond, "time each construction takes")
	cmd.Flags().BoolVar(&o.serve, "serve", false, "keep serving metrics after the test")
	return cmd
}

// selftest starts workers goroutines that Obtain the same probe at once, then
// walks the instance through New, As, Use and Free.
func selftest(f *registry.Factory, resolve func(string) string, p *probes, workers int) (selftestReport, error) {
	if workers < 1 {
		return selftestReport{}, fmt.Errorf("workers must be positive, got %d", workers)
	}
	typed := registry.For[*Probe](f, probeType)
	results := make([]*Probe, workers)
	errs := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = typed.Obtain("selftest")
		}(i)
	}
	close(start)
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return selftestReport{}, err
	}
	raced := p.built.Load()

	distinct := map[*Probe]struct{}{}
	for _, r := range results {
		distinct[r] = struct{}{}
	}
	shared := results[0]

	dup, err := typed.New("selftest")
	if err != nil {
		return selftestReport{}, err
	}
	if dup == shared {
		return selftestReport{}, errors.New("selftest: New returned the shared instance")
	}
	if _, err := typed.As(shared, "selftest"); err != nil {
		return selftestReport{}, err
	}
	got, err := typed.Use("selftest")
	if err != nil {
		return selftestReport{}, err
	}
	if got != shared {
		return selftestReport{}, errors.New("selftest: alias does not resolve to the shared instance")
	}

	k, err := registry.ConstructionKey(registry.KindObtain, resolve(typed.TypeID()), []any{"selftest"})
	if err != nil {
		return selftestReport{}, err
	}
	return selftestReport{
		Workers:       workers,
		Constructions: raced,
		Distinct:      len(distinct),
		Key:           k,
		Freed:         typed.Free(shared),
	}, nil
}
