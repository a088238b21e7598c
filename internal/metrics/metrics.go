package metrics

import (
	"fmt"
	"time"

	"coc-war-tracker/internal/config"
	"coc-war-tracker/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Recorder counts import activity. Batch runs have no scrape endpoint, so
// the registry is written to a node_exporter textfile on Flush.
type Recorder struct {
	registry       *prometheus.Registry
	path           string
	logger         zerolog.Logger
	warsTotal      *prometheus.CounterVec
	membersTotal   prometheus.Counter
	attacksTotal   prometheus.Counter
	failuresTotal  prometheus.Counter
	importDuration prometheus.Histogram
}

func New(cfg *config.Config, logger zerolog.Logger) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		path:     cfg.MetricsFile,
		logger:   logger,

		warsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warlog_wars_imported_total",
			Help: "Total number of wars imported",
		}, []string{"type"}),

		membersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "warlog_members_imported_total",
			Help: "Total number of war members imported",
		}),

		attacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "warlog_attacks_imported_total",
			Help: "Total number of attacks imported",
		}),

		failuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "warlog_import_failures_total",
			Help: "Total number of payloads that failed to import",
		}),

		importDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "warlog_import_duration_seconds",
			Help:    "Duration of a single war import in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Recorder) ObserveWar(war *domain.War, duration time.Duration) {
	warType := war.Type()
	if warType == "" {
		warType = "unknown"
	}
	r.warsTotal.WithLabelValues(warType).Inc()
	r.membersTotal.Add(float64(len(war.Members())))
	r.attacksTotal.Add(float64(len(war.Attacks())))
	r.importDuration.Observe(duration.Seconds())
}

func (r *Recorder) IncFailures() {
	r.failuresTotal.Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Flush writes the current values to the configured textfile. It does
// nothing when no file is configured.
func (r *Recorder) Flush() error {
	if r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	r.logger.Debug().Str("path", r.path).Msg("metrics written")
	return nil
}
