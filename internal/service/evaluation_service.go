package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/notify"
)

// EvaluationService performs the clinician-initiated EVALUATED transition.
type EvaluationService struct {
	instances InstanceStore
	notifier  notify.Notifier
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewEvaluationService creates a new EvaluationService.
func NewEvaluationService(instances InstanceStore, notifier notify.Notifier, rdb *redis.Client, log zerolog.Logger) *EvaluationService {
	return &EvaluationService{
		instances: instances,
		notifier:  notifier,
		rdb:       rdb,
		log:       log.With().Str("component", "evaluation_service").Logger(),
	}
}

// Evaluate closes an assessment. Allowed only from COMPLETED and only by the
// assigning clinician; the write carries a status guard, so a concurrent edit
// that reopened the assessment surfaces as an invalid transition, never as a
// silent overwrite.
func (s *EvaluationService) Evaluate(ctx context.Context, assessmentID uuid.UUID, psychologistID int, req *model.EvaluateRequest) (*model.AssessmentInstance, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PsychologistID != psychologistID {
		return nil, ErrNotOwner
	}

	events, err := engine.ApplyEvaluation(inst, req.FinalScore, req.Commentary, req.EvaluatedAt, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.instances.RecordEvaluation(ctx, inst); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engine.ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("record evaluation: %w", err)
	}

	s.notifier.Dispatch(ctx, events)

	s.log.Info().
		Str("assessment_id", assessmentID.String()).
		Int("psychologist_id", psychologistID).
		Msg("Assessment evaluated")

	return inst, nil
}
