package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/objreg/core/metrics"
	"github.com/kilianp07/objreg/infra/logger"
)

// DefaultInfluxBatchSize is the number of points buffered before a write.
const DefaultInfluxBatchSize = 100

// InfluxOptions configures an InfluxSink.
type InfluxOptions struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// BatchSize is the number of points written per request. 1 writes every
	// point immediately.
	BatchSize int `json:"batch_size"`
	// FlushInterval bounds how long a partial batch waits. Zero disables
	// periodic flushing; Flush and Close still write pending points.
	FlushInterval time.Duration `json:"flush_interval"`
}

// InfluxSink writes registry activity to an InfluxDB bucket using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	mu       sync.Mutex
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewInfluxSink creates a sink for the configured InfluxDB endpoint.
func NewInfluxSink(o InfluxOptions) *InfluxSink {
	if o.BatchSize < 1 {
		o.BatchSize = DefaultInfluxBatchSize
	}
	base := strings.TrimSuffix(o.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, o.Token,
		influxdb2.DefaultOptions().
			SetHTTPClient(&http.Client{Timeout: 5 * time.Second}).
			SetBatchSize(uint(o.BatchSize)))
	w := client.WriteAPIBlocking(o.Org, o.Bucket)
	w.EnableBatching()
	s := &InfluxSink{
		client:   client,
		writeAPI: w,
		log:      logger.New("influx-sink"),
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if o.FlushInterval > 0 {
		go s.flushLoop(o.FlushInterval)
	} else {
		close(s.done)
	}
	return s
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(o InfluxOptions) coremetrics.MetricsSink {
	sink := NewInfluxSink(o)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		_ = sink.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) flushLoop(every time.Duration) {
	defer close(s.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			if err := s.Flush(); err != nil {
				s.log.Warnf("influx flush: %v", err)
			}
		}
	}
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAPI.WritePoint(ctx, p.SetTime(s.now()))
}

// RecordLookup writes a registry_lookup point.
func (s *InfluxSink) RecordLookup(res coremetrics.LookupResult) error {
	return s.write(write.NewPointWithMeasurement("registry_lookup").
		AddTag("op", res.Op).
		AddTag("hit", strconv.FormatBool(res.Hit)).
		AddField("count", 1))
}

// RecordConstruction writes a registry_construction point.
func (s *InfluxSink) RecordConstruction(cs coremetrics.ConstructionSample) error {
	return s.write(write.NewPointWithMeasurement("registry_construction").
		AddTag("type_id", cs.TypeID).
		AddTag("kind", cs.Kind).
		AddTag("failed", strconv.FormatBool(cs.Failed)).
		AddField("duration_ms", round3(cs.Duration.Seconds()*1000)))
}

// RecordAlias writes a registry_alias point.
func (s *InfluxSink) RecordAlias(typeID string, replaced bool) error {
	return s.write(write.NewPointWithMeasurement("registry_alias").
		AddTag("type_id", typeID).
		AddTag("replaced", strconv.FormatBool(replaced)).
		AddField("count", 1))
}

// RecordFree writes a registry_free point.
func (s *InfluxSink) RecordFree(removed int) error {
	return s.write(write.NewPointWithMeasurement("registry_free").
		AddField("removed", removed))
}

// RecordEntries writes a registry_entries point.
func (s *InfluxSink) RecordEntries(n int) error {
	return s.write(write.NewPointWithMeasurement("registry_entries").
		AddField("entries", n))
}

// Flush writes buffered points.
func (s *InfluxSink) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAPI.Flush(ctx)
}

// Close stops periodic flushing, writes pending points and releases the
// client.
func (s *InfluxSink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		err = s.Flush()
		s.client.Close()
	})
	return err
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
