// Package ingest accepts tick reports from validators.
package ingest

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/metrics"
)

// ErrInvalidTick is returned for reports with malformed content.
var ErrInvalidTick = errors.New("invalid tick")

// maxClockSkew bounds how far in the future an observation may be dated.
const maxClockSkew = 5 * time.Minute

// Report is one observation sent by a validator.
type Report struct {
	WebsiteID   uint64
	ValidatorID uint64
	Status      orm.TickStatus
	LatencyMS   uint64
	ObservedAt  time.Time
}

// Recorder persists ticks.
type Recorder interface {
	RecordTick(ctx context.Context, r ledger.TickRecord) (uint64, error)
}

// Service records ticks. Calls are independent: nothing is held between
// them and duplicates are credited like any other report.
type Service struct {
	store   Recorder
	metrics *metrics.Metrics
	now     func() time.Time
}

// New returns a new ingestion service.
func New(store Recorder, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: m,
		now:     time.Now,
	}
}

// Record validates and persists a report, returning the tick id.
func (s *Service) Record(ctx context.Context, r Report) (uint64, error) {
	if err := s.validate(r); err != nil {
		s.metrics.TickRejected()
		return 0, err
	}

	id, err := s.store.RecordTick(ctx, ledger.TickRecord{
		WebsiteID:   r.WebsiteID,
		ValidatorID: r.ValidatorID,
		Status:      r.Status,
		LatencyMS:   r.LatencyMS,
		ObservedAt:  r.ObservedAt,
	})
	if errors.Is(err, ledger.ErrNotFound) {
		s.metrics.TickRejected()
		return 0, err
	} else if err != nil {
		log.Error("record tick failed",
			"website", r.WebsiteID,
			"validator", r.ValidatorID,
			"error", err,
		)
		return 0, err
	}

	s.metrics.TickRecorded(string(r.Status))
	return id, nil
}

func (s *Service) validate(r Report) error {
	if !r.Status.Valid() {
		return errors.Wrapf(ErrInvalidTick, "status %q", r.Status)
	}

	if r.ObservedAt.IsZero() {
		return errors.Wrap(ErrInvalidTick, "missing observation time")
	}

	if r.ObservedAt.After(s.now().Add(maxClockSkew)) {
		return errors.Wrapf(ErrInvalidTick, "observation time %s is in the future", r.ObservedAt)
	}

	return nil
}
