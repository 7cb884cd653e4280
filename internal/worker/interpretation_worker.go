package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/service"
)

const (
	RecomputeBatchSize    = 50
	RecomputeBatchTimeout = 2 * time.Second
	RecomputePollTimeout  = 1 * time.Second
)

// InterpretationWorker consumes the recompute queue and refreshes the
// persisted domain scores of each assessment. Submissions arrive faster than
// clinicians read reports, so scoring runs out of band in batches instead of
// inline with every answer write.
type InterpretationWorker struct {
	assessmentRepo *repository.AssessmentRepository
	interpRepo     *repository.InterpretationRepository
	rdb            *redis.Client
	cfg            *config.Config
	log            zerolog.Logger
}

// NewInterpretationWorker creates a new InterpretationWorker.
func NewInterpretationWorker(
	assessmentRepo *repository.AssessmentRepository,
	interpRepo *repository.InterpretationRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *InterpretationWorker {
	return &InterpretationWorker{
		assessmentRepo: assessmentRepo,
		interpRepo:     interpRepo,
		rdb:            rdb,
		cfg:            cfg,
		log:            log.With().Str("component", "interpretation_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *InterpretationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("InterpretationWorker started")

	batch := make([]*service.RecomputePayload, 0, RecomputeBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= RecomputeBatchSize || time.Since(lastFlush) >= RecomputeBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecomputePollTimeout, config.WorkerKey.RecomputeInterpretations).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p service.RecomputePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// flushSafe recomputes each distinct assessment in the batch. Rapid answer
// submissions enqueue the same assessment many times; only the last state
// matters, so duplicates collapse before any database work.
func (w *InterpretationWorker) flushSafe(ctx context.Context, batch []*service.RecomputePayload) {
	if len(batch) == 0 {
		return
	}

	seen := make(map[string]bool, len(batch))
	for _, p := range batch {
		if seen[p.AssessmentID] {
			continue
		}
		seen[p.AssessmentID] = true

		if err := w.recompute(ctx, p); err != nil {
			w.log.Error().Err(err).
				Str("assessment_id", p.AssessmentID).
				Msg("Recompute failed, requeueing")
			raw, _ := json.Marshal(p)
			w.rdb.RPush(ctx, config.WorkerKey.RecomputeInterpretations, raw)
		}
	}
}

func (w *InterpretationWorker) recompute(ctx context.Context, p *service.RecomputePayload) error {
	assessmentID, err := uuid.Parse(p.AssessmentID)
	if err != nil {
		return err
	}

	inst, err := w.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return err
	}
	questions, err := w.assessmentRepo.ListQuestions(ctx, assessmentID)
	if err != nil {
		return err
	}
	answers, err := w.assessmentRepo.ListAnswers(ctx, assessmentID, inst.PatientID)
	if err != nil {
		return err
	}
	tables, err := w.interpRepo.GetTables(ctx, inst.TemplateID)
	if err != nil {
		return err
	}

	marker := inst.NegativeMarker
	if marker == "" {
		marker = w.cfg.DefaultNegativeMarker
	}

	scores := engine.ScoreDomains(questions, answers, inst.PatientID, tables, marker, time.Now())
	for i := range scores {
		scores[i].AssessmentID = assessmentID
	}
	return w.assessmentRepo.UpsertDomainScores(ctx, assessmentID, scores)
}
