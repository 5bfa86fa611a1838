// pkg/ingest/metrics.go
package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RunMetrics tracks one ingest or current-status run. Counters live in a
// private registry so that each run can be written out as a textfile for the
// node exporter.
type RunMetrics struct {
	mu        sync.Mutex
	logger    *zap.Logger
	registry  *prometheus.Registry
	StartTime time.Time
	EndTime   time.Time

	RowsRead       int
	RowsSelected   int
	RecordsValid   int
	PersonsAdded   int
	PersonsUpdated int
	Current        int
	NotCurrent     int

	rowsRead       prometheus.Counter
	rowsSelected   prometheus.Counter
	recordsValid   prometheus.Counter
	diagnostics    *prometheus.CounterVec
	personsAdded   prometheus.Counter
	personsUpdated prometheus.Counter
	current        prometheus.Counter
	notCurrent     prometheus.Counter
	sweepProgress  prometheus.Gauge
	lastRun        prometheus.Gauge
}

// NewRunMetrics creates the metrics of one run labelled with job
func NewRunMetrics(job string, logger *zap.Logger) *RunMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	labels := prometheus.Labels{"job_name": job}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vivo_ingest",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	m := &RunMetrics{
		logger:         logger,
		registry:       prometheus.NewRegistry(),
		StartTime:      time.Now(),
		rowsRead:       counter("rows_read_total", "HR extract rows read."),
		rowsSelected:   counter("rows_selected_total", "HR rows left after one row per identifier was selected."),
		recordsValid:   counter("records_valid_total", "Rows that passed every validation gate."),
		personsAdded:   counter("persons_added_total", "People created in the knowledge base."),
		personsUpdated: counter("persons_updated_total", "Existing people reconciled with HR."),
		current:        counter("current_assertions_total", "Identifiers asserted current."),
		notCurrent:     counter("not_current_retractions_total", "Identifiers retracted from current."),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vivo_ingest",
			Name:        "diagnostics_total",
			Help:        "Validation failures by gate and category.",
			ConstLabels: labels,
		}, []string{"gate", "category"}),
		sweepProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "vivo_ingest",
			Name:        "sweep_identifiers_visited",
			Help:        "Knowledge-base identifiers visited by the current-status sweep.",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "vivo_ingest",
			Name:        "last_run_duration_seconds",
			Help:        "Wall time of the run.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.rowsRead, m.rowsSelected, m.recordsValid, m.diagnostics,
		m.personsAdded, m.personsUpdated, m.current, m.notCurrent,
		m.sweepProgress, m.lastRun,
	)
	return m
}

// RecordRows records the extract size before and after row selection
func (m *RunMetrics) RecordRows(read, selected int) {
	m.mu.Lock()
	m.RowsRead += read
	m.RowsSelected += selected
	m.mu.Unlock()
	m.rowsRead.Add(float64(read))
	m.rowsSelected.Add(float64(selected))
}

// RecordValid counts a record that passed validation
func (m *RunMetrics) RecordValid() {
	m.mu.Lock()
	m.RecordsValid++
	m.mu.Unlock()
	m.recordsValid.Inc()
}

// RecordDiagnostics counts the failed gates of one row
func (m *RunMetrics) RecordDiagnostics(diags []Diagnostic) {
	for _, d := range diags {
		m.diagnostics.WithLabelValues(d.Gate, d.Category.String()).Inc()
	}
}

// RecordAdded counts a Case 1 add
func (m *RunMetrics) RecordAdded() {
	m.mu.Lock()
	m.PersonsAdded++
	m.mu.Unlock()
	m.personsAdded.Inc()
}

// RecordUpdated counts a Case 3 update
func (m *RunMetrics) RecordUpdated() {
	m.mu.Lock()
	m.PersonsUpdated++
	m.mu.Unlock()
	m.personsUpdated.Inc()
}

// RecordCurrent counts one identifier of the current-status sweep
func (m *RunMetrics) RecordCurrent(current bool) {
	m.mu.Lock()
	if current {
		m.Current++
		m.current.Inc()
	} else {
		m.NotCurrent++
		m.notCurrent.Inc()
	}
	m.mu.Unlock()
	m.sweepProgress.Inc()
}

// Registry exposes the run's registry for gathering
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Duration returns the run time so far, or the total once Complete was
// called
func (m *RunMetrics) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Complete marks the run as finished and logs the summary
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()
	duration := m.EndTime.Sub(m.StartTime)
	m.lastRun.Set(duration.Seconds())

	m.logger.Info("Run completed",
		zap.Duration("totalDuration", duration),
		zap.Int("rowsRead", m.RowsRead),
		zap.Int("rowsSelected", m.RowsSelected),
		zap.Int("recordsValid", m.RecordsValid),
		zap.Int("personsAdded", m.PersonsAdded),
		zap.Int("personsUpdated", m.PersonsUpdated),
		zap.Int("current", m.Current),
		zap.Int("notCurrent", m.NotCurrent))
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (m *RunMetrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	m.logger.Debug("Wrote metrics textfile", zap.String("path", path))
	return nil
}
