package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/notify"
)

// Assessment workflow errors.
var (
	ErrNotAssignedPatient = errors.New("patient is not assigned to this psychologist")
	ErrNotOwner           = errors.New("assessment does not belong to this user")
)

// InstanceStore is the persistence surface the assessment workflow needs.
// Satisfied by repository.AssessmentRepository; tests substitute an in-memory
// implementation.
type InstanceStore interface {
	CreateFromTemplate(ctx context.Context, tmpl *model.AssessmentTemplate, questions []model.QuestionTemplate, patientID, psychologistID int) (*model.AssessmentInstance, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentInstance, error)
	ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]model.Question, error)
	ListAnswers(ctx context.Context, assessmentID uuid.UUID, patientID int) ([]model.Answer, error)
	SaveAnswers(ctx context.Context, assessmentID uuid.UUID, patientID int, replacedQuestionIDs []uuid.UUID, answers []model.Answer, newStatus model.AssessmentStatus, answeredAt time.Time) error
	RecordEvaluation(ctx context.Context, inst *model.AssessmentInstance) error
	ListByPatient(ctx context.Context, patientID, limit, offset int) ([]model.AssessmentInstance, int, error)
	ListByPsychologist(ctx context.Context, psychologistID, limit, offset int) ([]model.AssessmentInstance, int, error)
	UpsertDomainScores(ctx context.Context, assessmentID uuid.UUID, scores []model.DomainScore) error
	ListDomainScores(ctx context.Context, assessmentID uuid.UUID) ([]model.DomainScore, error)
}

// TemplateStore is the template read surface used when assigning.
type TemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentTemplate, error)
	ListQuestions(ctx context.Context, templateID uuid.UUID) ([]model.QuestionTemplate, error)
}

// InterpretationStore resolves the per-domain band tables of an instrument.
type InterpretationStore interface {
	GetTables(ctx context.Context, templateID uuid.UUID) (map[string][]model.BandRange, error)
}

// PatientStore resolves patient records for assignment checks.
type PatientStore interface {
	GetByID(ctx context.Context, id int) (*model.Patient, error)
}

// AssessmentService orchestrates the assessment workflow: assignment, answer
// submission, progress, and domain reporting. Lifecycle decisions are
// delegated to the engine package; this service only loads state, calls the
// engine, and persists the outcome.
type AssessmentService struct {
	instances InstanceStore
	templates TemplateStore
	interps   InterpretationStore
	patients  PatientStore
	notifier  notify.Notifier
	rdb       *redis.Client
	cfg       *config.Config
	log       zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	instances InstanceStore,
	templates TemplateStore,
	interps InterpretationStore,
	patients PatientStore,
	notifier notify.Notifier,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		instances: instances,
		templates: templates,
		interps:   interps,
		patients:  patients,
		notifier:  notifier,
		rdb:       rdb,
		cfg:       cfg,
		log:       log.With().Str("component", "assessment_service").Logger(),
	}
}

// Assign issues a published template to one of the clinician's patients. The
// template's question set is deep-copied so later template edits never change
// an issued assessment.
func (s *AssessmentService) Assign(ctx context.Context, psychologistID int, req *model.AssignAssessmentRequest) (*model.AssessmentInstance, error) {
	tmpl, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tmpl.Status != model.TemplateStatusPublished {
		return nil, ErrTemplateNotPublished
	}

	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient.PsychologistID != psychologistID {
		return nil, ErrNotAssignedPatient
	}

	questions, err := s.templates.ListQuestions(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("list template questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	inst, err := s.instances.CreateFromTemplate(ctx, tmpl, questions, req.PatientID, psychologistID)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	s.log.Info().
		Str("assessment_id", inst.ID.String()).
		Int("patient_id", req.PatientID).
		Int("psychologist_id", psychologistID).
		Msg("Assessment assigned")

	return inst, nil
}

// AssessmentPaper is an instance with its questions, the respondent's current
// answers, and the derived progress. It is what the patient portal renders.
type AssessmentPaper struct {
	Assessment *model.AssessmentInstance `json:"assessment"`
	Questions  []model.Question          `json:"questions"`
	Answers    []model.Answer            `json:"answers"`
	Progress   engine.Progress           `json:"progress"`
}

// GetPaperForPatient loads the full answering view of an assessment, enforcing
// that the requester is the assigned respondent.
func (s *AssessmentService) GetPaperForPatient(ctx context.Context, assessmentID uuid.UUID, patientID int) (*AssessmentPaper, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PatientID != patientID {
		return nil, ErrNotOwner
	}
	return s.buildPaper(ctx, inst)
}

// GetPaperForPsychologist loads the same view for the assigning clinician.
func (s *AssessmentService) GetPaperForPsychologist(ctx context.Context, assessmentID uuid.UUID, psychologistID int) (*AssessmentPaper, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PsychologistID != psychologistID {
		return nil, ErrNotOwner
	}
	return s.buildPaper(ctx, inst)
}

func (s *AssessmentService) buildPaper(ctx context.Context, inst *model.AssessmentInstance) (*AssessmentPaper, error) {
	questions, err := s.instances.ListQuestions(ctx, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.instances.ListAnswers(ctx, inst.ID, inst.PatientID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	progress, err := engine.ComputeProgress(questions, answers, inst.PatientID)
	if err != nil {
		return nil, fmt.Errorf("compute progress: %w", err)
	}
	return &AssessmentPaper{
		Assessment: inst,
		Questions:  questions,
		Answers:    answers,
		Progress:   progress,
	}, nil
}

// ListForPatient returns a patient's assessments, newest first, paginated.
func (s *AssessmentService) ListForPatient(ctx context.Context, patientID, page, limit int) ([]model.AssessmentInstance, int, error) {
	return s.instances.ListByPatient(ctx, patientID, limit, (page-1)*limit)
}

// ListForPsychologist returns a clinician's assigned assessments, paginated.
func (s *AssessmentService) ListForPsychologist(ctx context.Context, psychologistID, page, limit int) ([]model.AssessmentInstance, int, error) {
	return s.instances.ListByPsychologist(ctx, psychologistID, limit, (page-1)*limit)
}

// SubmitResult is returned after a successful answer batch write.
type SubmitResult struct {
	Status   model.AssessmentStatus `json:"status"`
	Progress engine.Progress        `json:"progress"`
}

// SubmitAnswers validates and persists a batch of answers, recomputes
// progress over the post-write answer set, applies the resulting lifecycle
// transition, and writes answers plus status in one transaction. Domain
// events are dispatched only after that write commits.
//
// Single-valued questions are overwritten by a new submission; multi-choice
// selections accumulate, skipping options already recorded.
func (s *AssessmentService) SubmitAnswers(ctx context.Context, assessmentID uuid.UUID, patientID int, req *model.SubmitAnswersRequest) (*SubmitResult, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PatientID != patientID {
		return nil, ErrNotOwner
	}
	if inst.Status == model.StatusEvaluated {
		return nil, engine.ErrInvalidStateTransition
	}

	questions, err := s.instances.ListQuestions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	existing, err := s.instances.ListAnswers(ctx, assessmentID, patientID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	newRows, replacedIDs, err := buildAnswerRows(inst, byID, existing, req.Answers, patientID)
	if err != nil {
		return nil, err
	}

	// The transition is decided on the answer set as it will exist after the
	// write, so the persisted status can never disagree with the persisted
	// answers.
	postWrite := mergeAnswerSets(existing, newRows, replacedIDs)
	progress, err := engine.ComputeProgress(questions, postWrite, patientID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events := engine.Transition(inst, progress, now)

	if err := s.instances.SaveAnswers(ctx, assessmentID, patientID, replacedIDs, newRows, inst.Status, now); err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}

	s.notifier.Dispatch(ctx, events)
	s.queueRecompute(ctx, assessmentID, patientID)
	s.cacheProgress(ctx, assessmentID, progress)

	return &SubmitResult{Status: inst.Status, Progress: progress}, nil
}

// Progress recomputes the respondent's progress on demand.
func (s *AssessmentService) Progress(ctx context.Context, assessmentID uuid.UUID, patientID int) (engine.Progress, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return engine.Progress{}, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PatientID != patientID {
		return engine.Progress{}, ErrNotOwner
	}

	questions, err := s.instances.ListQuestions(ctx, assessmentID)
	if err != nil {
		return engine.Progress{}, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.instances.ListAnswers(ctx, assessmentID, patientID)
	if err != nil {
		return engine.Progress{}, fmt.Errorf("list answers: %w", err)
	}
	return engine.ComputeProgress(questions, answers, patientID)
}

// DomainReport computes the normative interpretation of an assessment for its
// clinician, always from the live answer set. Missing tables degrade to the
// sentinel band labels instead of failing the report.
func (s *AssessmentService) DomainReport(ctx context.Context, assessmentID uuid.UUID, psychologistID int) ([]model.DomainScore, error) {
	inst, err := s.instances.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if inst.PsychologistID != psychologistID {
		return nil, ErrNotOwner
	}

	questions, err := s.instances.ListQuestions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.instances.ListAnswers(ctx, assessmentID, inst.PatientID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	tables, err := s.interps.GetTables(ctx, inst.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get interpretation tables: %w", err)
	}

	scores := engine.ScoreDomains(questions, answers, inst.PatientID, tables, s.negativeMarker(inst), time.Now())
	for i := range scores {
		scores[i].AssessmentID = inst.ID
	}
	return scores, nil
}

func (s *AssessmentService) negativeMarker(inst *model.AssessmentInstance) string {
	if inst.NegativeMarker != "" {
		return inst.NegativeMarker
	}
	return s.cfg.DefaultNegativeMarker
}

// RecomputePayload is the queue message consumed by the interpretation worker.
type RecomputePayload struct {
	AssessmentID string `json:"assessment_id"`
	PatientID    int    `json:"patient_id"`
}

// queueRecompute asks the interpretation worker to refresh the persisted
// domain scores. Fire-and-forget: a queue failure only delays the refresh.
func (s *AssessmentService) queueRecompute(ctx context.Context, assessmentID uuid.UUID, patientID int) {
	raw, _ := json.Marshal(RecomputePayload{
		AssessmentID: assessmentID.String(),
		PatientID:    patientID,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.RecomputeInterpretations, raw).Err(); err != nil {
		s.log.Error().Err(err).Str("assessment_id", assessmentID.String()).Msg("Queue recompute error")
	}
}

// cacheProgress stores the latest progress snapshot for cheap polling reads.
func (s *AssessmentService) cacheProgress(ctx context.Context, assessmentID uuid.UUID, p engine.Progress) {
	raw, _ := json.Marshal(p)
	key := config.CacheKey.AssessmentProgressKey(assessmentID.String())
	if err := s.rdb.Set(ctx, key, raw, 10*time.Minute).Err(); err != nil {
		s.log.Error().Err(err).Msg("Cache progress error")
	}
}

// buildAnswerRows turns the submitted batch into validated answer rows plus
// the list of question ids whose prior rows must be deleted first. The batch
// is all-or-nothing: any invalid answer rejects the whole submission before
// anything is written.
func buildAnswerRows(
	inst *model.AssessmentInstance,
	questions map[uuid.UUID]*model.Question,
	existing []model.Answer,
	submissions []model.AnswerSubmission,
	patientID int,
) ([]model.Answer, []uuid.UUID, error) {
	recorded := make(map[uuid.UUID]map[uuid.UUID]bool) // question -> option -> already stored
	for i := range existing {
		a := &existing[i]
		if a.OptionID == nil {
			continue
		}
		if recorded[a.QuestionID] == nil {
			recorded[a.QuestionID] = make(map[uuid.UUID]bool)
		}
		recorded[a.QuestionID][*a.OptionID] = true
	}

	var rows []model.Answer
	var replaced []uuid.UUID

	for _, sub := range submissions {
		q, ok := questions[sub.QuestionID]
		if !ok {
			return nil, nil, engine.ErrQuestionMismatch
		}

		var candidates []model.Answer
		switch q.Type {
		case model.QuestionTypeSingleChoice, model.QuestionTypeMultiChoice:
			if len(sub.OptionIDs) == 0 {
				return nil, nil, engine.ErrInvalidAnswerShape
			}
			if q.Type == model.QuestionTypeSingleChoice && len(sub.OptionIDs) > 1 {
				return nil, nil, engine.ErrInvalidAnswerShape
			}
			for _, optID := range sub.OptionIDs {
				id := optID
				candidates = append(candidates, model.Answer{
					AssessmentID: inst.ID,
					QuestionID:   q.ID,
					PatientID:    patientID,
					OptionID:     &id,
				})
			}
		case model.QuestionTypeFreeText:
			candidates = append(candidates, model.Answer{
				AssessmentID: inst.ID,
				QuestionID:   q.ID,
				PatientID:    patientID,
				TextValue:    sub.Text,
			})
		case model.QuestionTypeNumericRange:
			candidates = append(candidates, model.Answer{
				AssessmentID: inst.ID,
				QuestionID:   q.ID,
				PatientID:    patientID,
				NumericValue: sub.Number,
			})
		default:
			return nil, nil, engine.ErrUnknownQuestionType
		}

		for i := range candidates {
			if err := engine.ValidateAnswer(q, &candidates[i]); err != nil {
				return nil, nil, err
			}
		}

		if q.Type.SingleValued() {
			replaced = append(replaced, q.ID)
			rows = append(rows, candidates...)
			continue
		}

		// Multi-choice accumulates: drop options already recorded, and
		// options repeated within this submission.
		seen := make(map[uuid.UUID]bool, len(candidates))
		for i := range candidates {
			id := *candidates[i].OptionID
			if recorded[q.ID][id] || seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, candidates[i])
		}
	}

	return rows, replaced, nil
}

// mergeAnswerSets models the answer set as it will exist after the write.
func mergeAnswerSets(existing, inserted []model.Answer, replacedIDs []uuid.UUID) []model.Answer {
	dropped := make(map[uuid.UUID]bool, len(replacedIDs))
	for _, id := range replacedIDs {
		dropped[id] = true
	}

	merged := make([]model.Answer, 0, len(existing)+len(inserted))
	for i := range existing {
		if dropped[existing[i].QuestionID] {
			continue
		}
		merged = append(merged, existing[i])
	}
	return append(merged, inserted...)
}
