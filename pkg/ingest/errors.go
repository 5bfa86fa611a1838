// pkg/ingest/errors.go
package ingest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// ErrorCategory classifies why a row was voided or a run aborted
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// Exclusion lists and the protect flag; expected and informational
	ErrorCategoryPolicy
	// Missing or invalid source data; needs operator review
	ErrorCategoryDataQuality
	// Store or lookup failure; fatal for the run
	ErrorCategoryExternal
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryPolicy:
		return "Policy"
	case ErrorCategoryDataQuality:
		return "DataQuality"
	case ErrorCategoryExternal:
		return "External"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Validation gates
const (
	GateIdentifier     = "identifier"
	GateReference      = "reference"
	GateSalaryPlan     = "salary_plan"
	GatePersonType     = "person_type"
	GateDepartment     = "department"
	GatePrivacy        = "privacy"
	GateContact        = "contact"
	GateHomeDepartment = "home_department"
	GateStartDate      = "start_date"
	GateEndDate        = "end_date"
	GatePositionLabel  = "position_label"
)

// Diagnostic is one failed gate of one row. Message is the line written to
// the exceptions file.
type Diagnostic struct {
	Category ErrorCategory
	Gate     string
	UFID     string
	Value    string
	Message  string
}

// NewDiagnostic creates a diagnostic whose message is formatted from format
// and args
func NewDiagnostic(category ErrorCategory, gate, ufid, value, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Category: category,
		Gate:     gate,
		UFID:     ufid,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
	}
}

// String returns the exceptions-file line
func (d Diagnostic) String() string {
	return d.Message
}

// ExternalError marks a failure of the knowledge base or a lookup store.
// It aborts the run.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalError; nil stays nil
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalError{Op: op, Err: err}
}

// IsExternal reports whether err is, or wraps, an ExternalError
func IsExternal(err error) bool {
	var ext *ExternalError
	return errors.As(err, &ext)
}

// DiagnosticLog writes diagnostics to the exceptions sink and keeps counts
// and samples for the run summary
type DiagnosticLog struct {
	logger     *zap.Logger
	sink       io.Writer
	counts     map[ErrorCategory]int
	gateCounts map[string]int
	samples    map[ErrorCategory][]Diagnostic
	maxSamples int
	voidedRows int
	mu         sync.Mutex
}

// NewDiagnosticLog creates a log writing to sink. Non-ASCII text is written
// as numeric character references.
func NewDiagnosticLog(sink io.Writer, logger *zap.Logger) *DiagnosticLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticLog{
		logger:     logger,
		sink:       rdf.NewASCIIWriter(sink),
		counts:     make(map[ErrorCategory]int),
		gateCounts: make(map[string]int),
		samples:    make(map[ErrorCategory][]Diagnostic),
		maxSamples: 5,
	}
}

// Record writes the diagnostics of one voided row
func (l *DiagnosticLog) Record(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.voidedRows++
	for _, d := range diags {
		if _, err := io.WriteString(l.sink, d.Message+"\n"); err != nil {
			return External("write exceptions", err)
		}

		l.counts[d.Category]++
		l.gateCounts[d.Gate]++
		if samples := l.samples[d.Category]; len(samples) < l.maxSamples {
			l.samples[d.Category] = append(samples, d)
		}

		level := zap.InfoLevel
		if d.Category == ErrorCategoryDataQuality {
			level = zap.WarnLevel
		}
		l.logger.Log(level, "Row voided",
			zap.String("ufid", d.UFID),
			zap.String("category", d.Category.String()),
			zap.String("gate", d.Gate),
			zap.String("value", d.Value))
	}
	return nil
}

// Summary returns the number of diagnostics per category
func (l *DiagnosticLog) Summary() map[ErrorCategory]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(l.counts))
	for category, count := range l.counts {
		summary[category] = count
	}
	return summary
}

// GateCounts returns the number of diagnostics per gate
func (l *DiagnosticLog) GateCounts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[string]int, len(l.gateCounts))
	for gate, count := range l.gateCounts {
		counts[gate] = count
	}
	return counts
}

// Samples returns up to five diagnostics per category
func (l *DiagnosticLog) Samples() map[ErrorCategory][]Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()

	samples := make(map[ErrorCategory][]Diagnostic, len(l.samples))
	for category, diags := range l.samples {
		samples[category] = append([]Diagnostic(nil), diags...)
	}
	return samples
}

// VoidedRows returns the number of rows that produced diagnostics
func (l *DiagnosticLog) VoidedRows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.voidedRows
}

// LogSummary logs the per-gate counts in gate order
func (l *DiagnosticLog) LogSummary() {
	counts := l.GateCounts()
	gates := make([]string, 0, len(counts))
	for gate := range counts {
		gates = append(gates, gate)
	}
	sort.Strings(gates)

	fields := make([]zap.Field, 0, len(gates)+1)
	fields = append(fields, zap.Int("voided_rows", l.VoidedRows()))
	for _, gate := range gates {
		fields = append(fields, zap.Int(gate, counts[gate]))
	}
	l.logger.Info("Validation summary", fields...)
}
