// Package fetch implements the MEP sample fetch workflow: enumerate the
// available profile identifiers, fetch a bounded sample strictly in order,
// and aggregate the outcome into a single result.
package fetch

import (
	"context"
	"fmt"

	"github.com/openparl/mep-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for fetch runs.
var (
	mepFetchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mep_fetch_runs_total",
		Help: "Total fetch runs by outcome",
	}, []string{"status"}) // "ok", "failed"

	mepRecordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mep_records_fetched_total",
		Help: "Total MEP records fetched successfully",
	})

	mepRecordFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mep_record_failures_total",
		Help: "Total MEP records skipped due to per-record failures",
	})
)

// SampleCap bounds how many records a single run processes.
const SampleCap = 10

// Source enumerates profile identifiers and opens record handles.
// The orchestrator depends only on this abstraction; pkg/mepapi provides the
// implementation backed by the Parliament website.
type Source interface {
	// EnumerateIdentifiers returns all currently available identifiers in
	// the source's canonical order.
	EnumerateIdentifiers(ctx context.Context) ([]string, error)

	// OpenRecord constructs a handle for one identifier. Opening a record
	// does not imply that subsequent extraction will succeed.
	OpenRecord(ctx context.Context, identifier string) (RecordHandle, error)
}

// RecordHandle extracts structured data for a single record.
type RecordHandle interface {
	// PersonalData returns the personal fields of the record. The field
	// set is owned by the source, not by this package.
	PersonalData(ctx context.Context) (map[string]string, error)

	// Committees returns committee memberships in document order.
	Committees(ctx context.Context) ([]Committee, error)

	// Serialize returns the source's full JSON-compatible representation.
	Serialize(ctx context.Context) (map[string]any, error)
}

// Committee describes one committee membership.
type Committee struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Record is the per-identifier data folded into the result.
type Record struct {
	Identifier   string            `json:"identifier"`
	PersonalData map[string]string `json:"personal_data"`
	Committees   []Committee       `json:"committees"`
	Raw          map[string]any    `json:"raw_serialization"`
}

// Orchestrator runs the fetch-sample-and-report workflow.
type Orchestrator struct {
	source    Source
	sampleCap int
	logger    zerolog.Logger
}

// NewOrchestrator creates an orchestrator over the given source.
func NewOrchestrator(source Source) *Orchestrator {
	return &Orchestrator{
		source:    source,
		sampleCap: SampleCap,
		logger:    logging.NewLogger("fetch"),
	}
}

// Run executes one fetch run and always returns a Result.
//
// Enumeration failure (or an empty directory) is fatal and yields a failure
// Result without any per-record processing. Per-record failures are isolated:
// the record is logged and skipped, and the run still succeeds. Records are
// processed strictly sequentially, in enumeration order, without retries.
func (o *Orchestrator) Run(ctx context.Context) Result {
	o.logger.Info().Msg("Fetching MEP data from the EU Parliament website")

	identifiers, err := o.source.EnumerateIdentifiers(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to enumerate identifiers")
		mepFetchRunsTotal.WithLabelValues("failed").Inc()
		return FailureResult(err.Error())
	}

	if len(identifiers) == 0 {
		o.logger.Error().Msg("No identifiers found - the Parliament website may be unavailable")
		mepFetchRunsTotal.WithLabelValues("failed").Inc()
		return FailureResult("no identifiers found")
	}

	o.logger.Info().
		Int("total", len(identifiers)).
		Msg("Enumerated MEP identifiers")

	sampleSize := len(identifiers)
	if sampleSize > o.sampleCap {
		sampleSize = o.sampleCap
	}

	o.logger.Info().
		Int("sample_size", sampleSize).
		Msg("Processing sample")

	records := make([]Record, 0, sampleSize)

	for i, identifier := range identifiers[:sampleSize] {
		o.logger.Info().
			Int("record", i+1).
			Int("sample_size", sampleSize).
			Str("identifier", identifier).
			Msg("Processing record")

		record, err := o.fetchRecord(ctx, identifier)
		if err != nil {
			// Per-record failures never abort the run
			mepRecordFailuresTotal.Inc()
			o.logger.Warn().
				Err(err).
				Int("record", i+1).
				Str("identifier", identifier).
				Msg("Record skipped")
			continue
		}

		records = append(records, record)
		mepRecordsFetchedTotal.Inc()

		o.logger.Info().
			Int("record", i+1).
			Msg("Record processed")
	}

	o.logger.Info().
		Int("total", len(identifiers)).
		Int("processed", len(records)).
		Msg("Fetch run complete")

	mepFetchRunsTotal.WithLabelValues("ok").Inc()

	return Result{
		TotalIdentifiersFound: len(identifiers),
		SampleProcessed:       len(records),
		SampleData:            records,
		Success:               true,
	}
}

// fetchRecord extracts one record through its handle. Any failure is
// returned to the caller as a value; the accumulation loop decides what to
// do with it.
func (o *Orchestrator) fetchRecord(ctx context.Context, identifier string) (Record, error) {
	handle, err := o.source.OpenRecord(ctx, identifier)
	if err != nil {
		return Record{}, fmt.Errorf("open record: %w", err)
	}

	personal, err := handle.PersonalData(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("personal data: %w", err)
	}

	committees, err := handle.Committees(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("committees: %w", err)
	}

	raw, err := handle.Serialize(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("serialize: %w", err)
	}

	return Record{
		Identifier:   identifier,
		PersonalData: personal,
		Committees:   committees,
		Raw:          coerceMap(raw),
	}, nil
}
