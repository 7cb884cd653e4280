package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/engine"
	"github.com/clinsa/psicotest-backend/internal/model"
)

// ─── In-Memory Fakes ───────────────────────────────────────────────────

type fakeInstanceStore struct {
	instances map[uuid.UUID]*model.AssessmentInstance
	questions map[uuid.UUID][]model.Question
	answers   map[uuid.UUID][]model.Answer
	scores    map[uuid.UUID][]model.DomainScore
}

func newFakeInstanceStore() *fakeInstanceStore {
	return &fakeInstanceStore{
		instances: make(map[uuid.UUID]*model.AssessmentInstance),
		questions: make(map[uuid.UUID][]model.Question),
		answers:   make(map[uuid.UUID][]model.Answer),
		scores:    make(map[uuid.UUID][]model.DomainScore),
	}
}

func (f *fakeInstanceStore) CreateFromTemplate(_ context.Context, tmpl *model.AssessmentTemplate, questions []model.QuestionTemplate, patientID, psychologistID int) (*model.AssessmentInstance, error) {
	inst := &model.AssessmentInstance{
		ID:             uuid.New(),
		TemplateID:     tmpl.ID,
		Title:          tmpl.Title,
		PatientID:      patientID,
		PsychologistID: psychologistID,
		TotalValue:     tmpl.TotalValue,
		WeightingMode:  tmpl.WeightingMode,
		NegativeMarker: tmpl.NegativeMarker,
		Status:         model.StatusNotStarted,
		CreatedAt:      time.Now(),
	}
	f.instances[inst.ID] = inst

	var copied []model.Question
	for _, qt := range questions {
		q := model.Question{
			ID:           uuid.New(),
			AssessmentID: inst.ID,
			Text:         qt.Text,
			Type:         qt.Type,
			OrderNum:     qt.OrderNum,
			Mandatory:    qt.Mandatory,
			Weight:       qt.Weight,
			Domain:       qt.Domain,
		}
		for _, ot := range qt.Options {
			q.Options = append(q.Options, model.Option{
				ID:         uuid.New(),
				QuestionID: q.ID,
				Label:      ot.Label,
				Value:      ot.Value,
				OrderNum:   ot.OrderNum,
			})
		}
		copied = append(copied, q)
	}
	f.questions[inst.ID] = copied
	return inst, nil
}

func (f *fakeInstanceStore) GetByID(_ context.Context, id uuid.UUID) (*model.AssessmentInstance, error) {
	inst, ok := f.instances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *inst
	return &cp, nil
}

func (f *fakeInstanceStore) ListQuestions(_ context.Context, assessmentID uuid.UUID) ([]model.Question, error) {
	return f.questions[assessmentID], nil
}

func (f *fakeInstanceStore) ListAnswers(_ context.Context, assessmentID uuid.UUID, patientID int) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range f.answers[assessmentID] {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeInstanceStore) SaveAnswers(_ context.Context, assessmentID uuid.UUID, patientID int, replacedQuestionIDs []uuid.UUID, answers []model.Answer, newStatus model.AssessmentStatus, answeredAt time.Time) error {
	dropped := make(map[uuid.UUID]bool)
	for _, id := range replacedQuestionIDs {
		dropped[id] = true
	}
	var kept []model.Answer
	for _, a := range f.answers[assessmentID] {
		if a.PatientID == patientID && dropped[a.QuestionID] {
			continue
		}
		kept = append(kept, a)
	}
	for _, a := range answers {
		a.ID = uuid.New()
		a.CreatedAt = answeredAt
		kept = append(kept, a)
	}
	f.answers[assessmentID] = kept

	inst := f.instances[assessmentID]
	inst.Status = newStatus
	inst.LastAnswerAt = &answeredAt
	if newStatus == model.StatusCompleted && inst.CompletedAt == nil {
		inst.CompletedAt = &answeredAt
	}
	return nil
}

func (f *fakeInstanceStore) RecordEvaluation(_ context.Context, inst *model.AssessmentInstance) error {
	stored, ok := f.instances[inst.ID]
	if !ok || stored.Status != model.StatusCompleted {
		return pgx.ErrNoRows
	}
	*stored = *inst
	return nil
}

func (f *fakeInstanceStore) ListByPatient(_ context.Context, patientID, limit, offset int) ([]model.AssessmentInstance, int, error) {
	var out []model.AssessmentInstance
	for _, inst := range f.instances {
		if inst.PatientID == patientID {
			out = append(out, *inst)
		}
	}
	return out, len(out), nil
}

func (f *fakeInstanceStore) ListByPsychologist(_ context.Context, psychologistID, limit, offset int) ([]model.AssessmentInstance, int, error) {
	var out []model.AssessmentInstance
	for _, inst := range f.instances {
		if inst.PsychologistID == psychologistID {
			out = append(out, *inst)
		}
	}
	return out, len(out), nil
}

func (f *fakeInstanceStore) UpsertDomainScores(_ context.Context, assessmentID uuid.UUID, scores []model.DomainScore) error {
	f.scores[assessmentID] = scores
	return nil
}

func (f *fakeInstanceStore) ListDomainScores(_ context.Context, assessmentID uuid.UUID) ([]model.DomainScore, error) {
	return f.scores[assessmentID], nil
}

type fakeTemplateStore struct {
	templates map[uuid.UUID]*model.AssessmentTemplate
	questions map[uuid.UUID][]model.QuestionTemplate
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id uuid.UUID) (*model.AssessmentTemplate, error) {
	tmpl, ok := f.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return tmpl, nil
}

func (f *fakeTemplateStore) ListQuestions(_ context.Context, templateID uuid.UUID) ([]model.QuestionTemplate, error) {
	return f.questions[templateID], nil
}

type fakeInterpretationStore struct {
	tables map[string][]model.BandRange
}

func (f *fakeInterpretationStore) GetTables(_ context.Context, _ uuid.UUID) (map[string][]model.BandRange, error) {
	if f.tables == nil {
		return map[string][]model.BandRange{}, nil
	}
	return f.tables, nil
}

type fakePatientStore struct {
	patients map[int]*model.Patient
}

func (f *fakePatientStore) GetByID(_ context.Context, id int) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeNotifier struct {
	events []engine.Event
}

func (f *fakeNotifier) Dispatch(_ context.Context, events []engine.Event) {
	f.events = append(f.events, events...)
}

// ─── Fixture ───────────────────────────────────────────────────────────

const (
	testPatientID      = 11
	testPsychologistID = 7
)

type fixture struct {
	store    *fakeInstanceStore
	notifier *fakeNotifier
	svc      *AssessmentService
	eval     *EvaluationService
}

// deadRedis returns a client pointing nowhere. Queue and cache writes are
// fire-and-forget, so every call just logs an error.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func newFixture(tables map[string][]model.BandRange) *fixture {
	store := newFakeInstanceStore()
	notifier := &fakeNotifier{}
	rdb := deadRedis()
	cfg := &config.Config{DefaultNegativeMarker: "no"}
	log := zerolog.Nop()

	templates := &fakeTemplateStore{
		templates: make(map[uuid.UUID]*model.AssessmentTemplate),
		questions: make(map[uuid.UUID][]model.QuestionTemplate),
	}
	patients := &fakePatientStore{patients: map[int]*model.Patient{
		testPatientID: {ID: testPatientID, PsychologistID: testPsychologistID},
	}}

	return &fixture{
		store:    store,
		notifier: notifier,
		svc: NewAssessmentService(store, templates, &fakeInterpretationStore{tables: tables},
			patients, notifier, rdb, cfg, log),
		eval: NewEvaluationService(store, notifier, rdb, log),
	}
}

// seedInstance creates an instance with one mandatory single-choice question
// (yes/no, domain "anxiety") and one optional multi-choice question.
func (fx *fixture) seedInstance(t *testing.T) *model.AssessmentInstance {
	t.Helper()

	domain := "anxiety"
	tmpl := &model.AssessmentTemplate{
		ID:             uuid.New(),
		Title:          "Screening",
		AuthorID:       testPsychologistID,
		WeightingMode:  model.WeightingModeEqual,
		NegativeMarker: "no",
		Status:         model.TemplateStatusPublished,
	}
	questions := []model.QuestionTemplate{
		{
			Text:      "Felt anxious?",
			Type:      model.QuestionTypeSingleChoice,
			OrderNum:  1,
			Mandatory: true,
			Domain:    &domain,
			Options: []model.OptionTemplate{
				{Label: "Yes", Value: "yes", OrderNum: 1},
				{Label: "No", Value: "no", OrderNum: 2},
			},
		},
		{
			Text:     "Stress sources?",
			Type:     model.QuestionTypeMultiChoice,
			OrderNum: 2,
			Options: []model.OptionTemplate{
				{Label: "Work", Value: "work", OrderNum: 1},
				{Label: "Family", Value: "family", OrderNum: 2},
				{Label: "Health", Value: "health", OrderNum: 3},
			},
		},
	}

	inst, err := fx.store.CreateFromTemplate(context.Background(), tmpl, questions, testPatientID, testPsychologistID)
	if err != nil {
		t.Fatalf("seed instance: %v", err)
	}
	return inst
}

func (fx *fixture) questionByOrder(t *testing.T, assessmentID uuid.UUID, orderNum int) *model.Question {
	t.Helper()
	for i, q := range fx.store.questions[assessmentID] {
		if q.OrderNum == orderNum {
			return &fx.store.questions[assessmentID][i]
		}
	}
	t.Fatalf("question with order %d not found", orderNum)
	return nil
}

func optionByValue(t *testing.T, q *model.Question, value string) uuid.UUID {
	t.Helper()
	for _, o := range q.Options {
		if o.Value == value {
			return o.ID
		}
	}
	t.Fatalf("option %q not found", value)
	return uuid.Nil
}

func submit(questionID uuid.UUID, optionIDs ...uuid.UUID) *model.SubmitAnswersRequest {
	return &model.SubmitAnswersRequest{
		Answers: []model.AnswerSubmission{{QuestionID: questionID, OptionIDs: optionIDs}},
	}
}

// ─── Tests ─────────────────────────────────────────────────────────────

func TestSubmitAnswersSingleChoiceReplaces(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 1)
	yes := optionByValue(t, q, "yes")
	no := optionByValue(t, q, "no")

	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, no)); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	answers, _ := fx.store.ListAnswers(ctx, inst.ID, testPatientID)
	var rows []model.Answer
	for _, a := range answers {
		if a.QuestionID == q.ID {
			rows = append(rows, a)
		}
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 answer row after replacement, got %d", len(rows))
	}
	if *rows[0].OptionID != no {
		t.Errorf("expected latest option to win")
	}
}

func TestSubmitAnswersMultiChoiceAccumulates(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 2)
	work := optionByValue(t, q, "work")
	family := optionByValue(t, q, "family")

	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, work)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	// Resubmitting an already recorded option together with a new one must
	// not duplicate the first.
	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, work, family)); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	answers, _ := fx.store.ListAnswers(ctx, inst.ID, testPatientID)
	var count int
	for _, a := range answers {
		if a.QuestionID == q.ID {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 accumulated rows, got %d", count)
	}
}

func TestSubmitAnswersMultiChoiceDedupesWithinBatch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 2)
	health := optionByValue(t, q, "health")

	// The same option repeated in one submission writes a single row.
	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, health, health, health)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	answers, _ := fx.store.ListAnswers(ctx, inst.ID, testPatientID)
	var count int
	for _, a := range answers {
		if a.QuestionID == q.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected 1 row for a repeated option, got %d", count)
	}
}

func TestSubmitAnswersLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 1)
	yes := optionByValue(t, q, "yes")

	result, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// The only mandatory question is answered, so the instance completes.
	if result.Status != model.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Status)
	}
	if result.Progress.Percent != 100 || !result.Progress.MandatoryComplete {
		t.Errorf("unexpected progress %+v", result.Progress)
	}

	var completions int
	for _, ev := range fx.notifier.events {
		if ev.Type == engine.EventAssessmentCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one completion event, got %d", completions)
	}

	// A no-op resubmission keeps the status and fires nothing new.
	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes)); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	completions = 0
	for _, ev := range fx.notifier.events {
		if ev.Type == engine.EventAssessmentCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Errorf("completion event fired again on unchanged status")
	}
}

func TestSubmitAnswersCompletionEventSurvivesDemotion(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)

	// One mandatory free-text question: a blank resubmission replaces
	// the answer and demotes the instance out of COMPLETED.
	tmpl := &model.AssessmentTemplate{
		ID:            uuid.New(),
		Title:         "Intake notes",
		AuthorID:      testPsychologistID,
		WeightingMode: model.WeightingModeNone,
		Status:        model.TemplateStatusPublished,
	}
	questions := []model.QuestionTemplate{
		{Text: "Describe your week.", Type: model.QuestionTypeFreeText, OrderNum: 1, Mandatory: true},
	}
	inst, err := fx.store.CreateFromTemplate(ctx, tmpl, questions, testPatientID, testPsychologistID)
	if err != nil {
		t.Fatalf("seed instance: %v", err)
	}
	q := fx.questionByOrder(t, inst.ID, 1)

	text := func(s string) *model.SubmitAnswersRequest {
		return &model.SubmitAnswersRequest{
			Answers: []model.AnswerSubmission{{QuestionID: q.ID, Text: &s}},
		}
	}
	countCompletions := func() int {
		n := 0
		for _, ev := range fx.notifier.events {
			if ev.Type == engine.EventAssessmentCompleted {
				n++
			}
		}
		return n
	}

	result, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, text("Rough, mostly."))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != model.StatusCompleted || countCompletions() != 1 {
		t.Fatalf("first completion: status %s, events %d", result.Status, countCompletions())
	}

	// Blank text is structurally valid but counts as unanswered.
	result, err = fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, text("   "))
	if err != nil {
		t.Fatalf("blank resubmit: %v", err)
	}
	if result.Status != model.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS after blank resubmit, got %s", result.Status)
	}

	result, err = fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, text("Better now."))
	if err != nil {
		t.Fatalf("recomplete: %v", err)
	}
	if result.Status != model.StatusCompleted {
		t.Fatalf("expected COMPLETED after recompleting, got %s", result.Status)
	}
	if got := countCompletions(); got != 1 {
		t.Errorf("completion event fired %d times across a demote-and-recomplete cycle, want 1", got)
	}
}

func TestSubmitAnswersRejections(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 1)
	yes := optionByValue(t, q, "yes")
	no := optionByValue(t, q, "no")

	t.Run("wrong patient", func(t *testing.T) {
		_, err := fx.svc.SubmitAnswers(ctx, inst.ID, 999, submit(q.ID, yes))
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		_, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(uuid.New(), yes))
		if !errors.Is(err, engine.ErrQuestionMismatch) {
			t.Errorf("expected ErrQuestionMismatch, got %v", err)
		}
	})

	t.Run("two options on single choice", func(t *testing.T) {
		_, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes, no))
		if !errors.Is(err, engine.ErrInvalidAnswerShape) {
			t.Errorf("expected ErrInvalidAnswerShape, got %v", err)
		}
	})

	t.Run("foreign option", func(t *testing.T) {
		_, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, uuid.New()))
		if !errors.Is(err, engine.ErrInvalidOption) {
			t.Errorf("expected ErrInvalidOption, got %v", err)
		}
	})

	t.Run("after evaluation", func(t *testing.T) {
		fx.store.instances[inst.ID].Status = model.StatusEvaluated
		defer func() { fx.store.instances[inst.ID].Status = model.StatusNotStarted }()

		_, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes))
		if !errors.Is(err, engine.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(nil)
	templates := fx.svc.templates.(*fakeTemplateStore)

	tmpl := &model.AssessmentTemplate{
		ID:            uuid.New(),
		Title:         "Screening",
		AuthorID:      testPsychologistID,
		WeightingMode: model.WeightingModeNone,
		Status:        model.TemplateStatusPublished,
	}
	templates.templates[tmpl.ID] = tmpl
	templates.questions[tmpl.ID] = []model.QuestionTemplate{
		{Text: "How do you feel?", Type: model.QuestionTypeFreeText, OrderNum: 1},
	}

	t.Run("success", func(t *testing.T) {
		inst, err := fx.svc.Assign(ctx, testPsychologistID, &model.AssignAssessmentRequest{
			TemplateID: tmpl.ID,
			PatientID:  testPatientID,
		})
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
		if inst.Status != model.StatusNotStarted {
			t.Errorf("expected NOT_STARTED, got %s", inst.Status)
		}
		if len(fx.store.questions[inst.ID]) != 1 {
			t.Errorf("question set not copied")
		}
	})

	t.Run("foreign patient", func(t *testing.T) {
		fx.svc.patients.(*fakePatientStore).patients[42] = &model.Patient{ID: 42, PsychologistID: 99}
		_, err := fx.svc.Assign(ctx, testPsychologistID, &model.AssignAssessmentRequest{
			TemplateID: tmpl.ID,
			PatientID:  42,
		})
		if !errors.Is(err, ErrNotAssignedPatient) {
			t.Errorf("expected ErrNotAssignedPatient, got %v", err)
		}
	})

	t.Run("draft template", func(t *testing.T) {
		draft := &model.AssessmentTemplate{ID: uuid.New(), Status: model.TemplateStatusDraft}
		templates.templates[draft.ID] = draft
		_, err := fx.svc.Assign(ctx, testPsychologistID, &model.AssignAssessmentRequest{
			TemplateID: draft.ID,
			PatientID:  testPatientID,
		})
		if !errors.Is(err, ErrTemplateNotPublished) {
			t.Errorf("expected ErrTemplateNotPublished, got %v", err)
		}
	})

	t.Run("empty template", func(t *testing.T) {
		empty := &model.AssessmentTemplate{ID: uuid.New(), Status: model.TemplateStatusPublished}
		templates.templates[empty.ID] = empty
		_, err := fx.svc.Assign(ctx, testPsychologistID, &model.AssignAssessmentRequest{
			TemplateID: empty.ID,
			PatientID:  testPatientID,
		})
		if !errors.Is(err, ErrNoQuestions) {
			t.Errorf("expected ErrNoQuestions, got %v", err)
		}
	})
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	complete := func(t *testing.T, fx *fixture) *model.AssessmentInstance {
		t.Helper()
		inst := fx.seedInstance(t)
		q := fx.questionByOrder(t, inst.ID, 1)
		yes := optionByValue(t, q, "yes")
		if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, yes)); err != nil {
			t.Fatalf("complete instance: %v", err)
		}
		return inst
	}

	t.Run("success", func(t *testing.T) {
		fx := newFixture(nil)
		inst := complete(t, fx)
		score := 80.0

		got, err := fx.eval.Evaluate(ctx, inst.ID, testPsychologistID, &model.EvaluateRequest{
			FinalScore: &score,
			Commentary: "within expected range",
		})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if got.Status != model.StatusEvaluated || !got.Evaluated {
			t.Errorf("instance not marked evaluated: %+v", got)
		}

		var evaluated int
		for _, ev := range fx.notifier.events {
			if ev.Type == engine.EventAssessmentEvaluated {
				evaluated++
			}
		}
		if evaluated != 1 {
			t.Errorf("expected one evaluation event, got %d", evaluated)
		}
	})

	t.Run("wrong psychologist", func(t *testing.T) {
		fx := newFixture(nil)
		inst := complete(t, fx)
		score := 80.0
		_, err := fx.eval.Evaluate(ctx, inst.ID, 999, &model.EvaluateRequest{FinalScore: &score})
		if !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("not completed", func(t *testing.T) {
		fx := newFixture(nil)
		inst := fx.seedInstance(t)
		score := 80.0
		_, err := fx.eval.Evaluate(ctx, inst.ID, testPsychologistID, &model.EvaluateRequest{FinalScore: &score})
		if !errors.Is(err, engine.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("missing required score", func(t *testing.T) {
		fx := newFixture(nil)
		inst := complete(t, fx)
		_, err := fx.eval.Evaluate(ctx, inst.ID, testPsychologistID, &model.EvaluateRequest{})
		if !errors.Is(err, engine.ErrInvalidScore) {
			t.Errorf("expected ErrInvalidScore, got %v", err)
		}
	})

	t.Run("twice", func(t *testing.T) {
		fx := newFixture(nil)
		inst := complete(t, fx)
		score := 80.0
		if _, err := fx.eval.Evaluate(ctx, inst.ID, testPsychologistID, &model.EvaluateRequest{FinalScore: &score}); err != nil {
			t.Fatalf("first evaluate: %v", err)
		}
		_, err := fx.eval.Evaluate(ctx, inst.ID, testPsychologistID, &model.EvaluateRequest{FinalScore: &score})
		if !errors.Is(err, engine.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestDomainReport(t *testing.T) {
	ctx := context.Background()
	tables := map[string][]model.BandRange{
		"anxiety": {
			{Domain: "anxiety", Min: 0, Max: 0, Label: "No indicators", Position: 1},
			{Domain: "anxiety", Min: 1, Max: 2, Label: "Needs review", Position: 2},
		},
	}
	fx := newFixture(tables)
	inst := fx.seedInstance(t)
	q := fx.questionByOrder(t, inst.ID, 1)
	no := optionByValue(t, q, "no")

	if _, err := fx.svc.SubmitAnswers(ctx, inst.ID, testPatientID, submit(q.ID, no)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	scores, err := fx.svc.DomainReport(ctx, inst.ID, testPsychologistID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var found *model.DomainScore
	for i := range scores {
		if scores[i].Domain == "anxiety" {
			found = &scores[i]
		}
	}
	if found == nil {
		t.Fatal("anxiety domain missing from report")
	}
	// The "no" option matches the instrument's negative marker, so it counts.
	if found.RawScore != 1 {
		t.Errorf("raw score = %d, want 1", found.RawScore)
	}
	if found.Band != "Needs review" {
		t.Errorf("band = %q, want %q", found.Band, "Needs review")
	}
	if found.AssessmentID != inst.ID {
		t.Errorf("assessment id not set on score")
	}

	t.Run("wrong psychologist", func(t *testing.T) {
		if _, err := fx.svc.DomainReport(ctx, inst.ID, 999); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})
}
