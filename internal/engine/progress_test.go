package engine

import (
	"testing"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

const respondentID = 42

func strPtr(s string) *string        { return &s }
func floatPtr(f float64) *float64    { return &f }
func uuidPtr(u uuid.UUID) *uuid.UUID { return &u }

// newChoiceQuestion builds a single-choice question with yes/no options.
func newChoiceQuestion(mandatory bool) model.Question {
	qID := uuid.New()
	return model.Question{
		ID:        qID,
		Type:      model.QuestionTypeSingleChoice,
		Mandatory: mandatory,
		Options: []model.Option{
			{ID: uuid.New(), QuestionID: qID, Label: "Sí", Value: "si", OrderNum: 0},
			{ID: uuid.New(), QuestionID: qID, Label: "No", Value: "no", OrderNum: 1},
		},
	}
}

func optionAnswer(q model.Question, optIndex int) model.Answer {
	return model.Answer{
		ID:         uuid.New(),
		QuestionID: q.ID,
		PatientID:  respondentID,
		OptionID:   uuidPtr(q.Options[optIndex].ID),
	}
}

func TestComputeProgressEmptyQuestionSet(t *testing.T) {
	p, err := ComputeProgress(nil, nil, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Percent != 0 {
		t.Errorf("percent = %d, want 0", p.Percent)
	}
	if !p.MandatoryComplete {
		t.Error("mandatoryComplete = false, want true (vacuously)")
	}
}

func TestComputeProgressScenarios(t *testing.T) {
	q1 := newChoiceQuestion(true)
	q2 := newChoiceQuestion(true)
	questions := []model.Question{q1, q2}

	tests := []struct {
		name          string
		answers       []model.Answer
		wantPercent   int
		wantComplete  bool
	}{
		{
			name:         "no answers",
			answers:      nil,
			wantPercent:  0,
			wantComplete: false,
		},
		{
			name:         "one of two mandatory answered",
			answers:      []model.Answer{optionAnswer(q1, 0)},
			wantPercent:  50,
			wantComplete: false,
		},
		{
			name:         "both answered",
			answers:      []model.Answer{optionAnswer(q1, 0), optionAnswer(q2, 1)},
			wantPercent:  100,
			wantComplete: true,
		},
		{
			name: "duplicate rows for one question count once",
			answers: []model.Answer{
				optionAnswer(q1, 0),
				optionAnswer(q1, 1),
			},
			wantPercent:  50,
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ComputeProgress(questions, tt.answers, respondentID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Percent != tt.wantPercent {
				t.Errorf("percent = %d, want %d", p.Percent, tt.wantPercent)
			}
			if p.MandatoryComplete != tt.wantComplete {
				t.Errorf("mandatoryComplete = %v, want %v", p.MandatoryComplete, tt.wantComplete)
			}
		})
	}
}

func TestComputeProgressOptionalQuestionsCountWithoutAnswers(t *testing.T) {
	mandatory := newChoiceQuestion(true)
	optional := newChoiceQuestion(false)
	questions := []model.Question{mandatory, optional}

	p, err := ComputeProgress(questions, []model.Answer{optionAnswer(mandatory, 0)}, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The unanswered optional question still counts toward the numerator.
	if p.Percent != 100 {
		t.Errorf("percent = %d, want 100", p.Percent)
	}
	if !p.MandatoryComplete {
		t.Error("mandatoryComplete = false, want true")
	}
}

func TestComputeProgressFreeTextAndNumeric(t *testing.T) {
	textQ := model.Question{ID: uuid.New(), Type: model.QuestionTypeFreeText, Mandatory: true}
	numQ := model.Question{ID: uuid.New(), Type: model.QuestionTypeNumericRange, Mandatory: true, MinValue: floatPtr(0), MaxValue: floatPtr(10)}
	questions := []model.Question{textQ, numQ}

	blank := model.Answer{ID: uuid.New(), QuestionID: textQ.ID, PatientID: respondentID, TextValue: strPtr("   ")}
	p, err := ComputeProgress(questions, []model.Answer{blank}, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Whitespace-only text is structurally valid but unanswered.
	if p.Percent != 0 || p.MandatoryComplete {
		t.Errorf("blank text: got percent=%d complete=%v, want 0/false", p.Percent, p.MandatoryComplete)
	}

	filled := []model.Answer{
		{ID: uuid.New(), QuestionID: textQ.ID, PatientID: respondentID, TextValue: strPtr("duerme mal")},
		{ID: uuid.New(), QuestionID: numQ.ID, PatientID: respondentID, NumericValue: floatPtr(7)},
	}
	p, err = ComputeProgress(questions, filled, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Percent != 100 || !p.MandatoryComplete {
		t.Errorf("filled: got percent=%d complete=%v, want 100/true", p.Percent, p.MandatoryComplete)
	}
}

func TestComputeProgressIgnoresOtherRespondents(t *testing.T) {
	q := newChoiceQuestion(true)
	foreign := optionAnswer(q, 0)
	foreign.PatientID = respondentID + 1

	p, err := ComputeProgress([]model.Question{q}, []model.Answer{foreign}, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Percent != 0 || p.MandatoryComplete || p.AnswerCount != 0 {
		t.Errorf("foreign answers leaked into progress: %+v", p)
	}
}

func TestComputeProgressIdempotent(t *testing.T) {
	q1 := newChoiceQuestion(true)
	q2 := newChoiceQuestion(false)
	questions := []model.Question{q1, q2}
	answers := []model.Answer{optionAnswer(q1, 1)}

	first, err := ComputeProgress(questions, answers, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeProgress(questions, answers, respondentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("ComputeProgress not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeProgressMonotonicOnNewAnswers(t *testing.T) {
	questions := make([]model.Question, 5)
	for i := range questions {
		questions[i] = newChoiceQuestion(true)
	}

	var answers []model.Answer
	prev := -1
	for i := range questions {
		answers = append(answers, optionAnswer(questions[i], 0))
		p, err := ComputeProgress(questions, answers, respondentID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Percent < prev {
			t.Fatalf("percent decreased from %d to %d after adding an answer", prev, p.Percent)
		}
		prev = p.Percent
	}
	if prev != 100 {
		t.Errorf("final percent = %d, want 100", prev)
	}
}

func TestComputeProgressUnknownTypeIsError(t *testing.T) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionType("matrix"), Mandatory: true}
	_, err := ComputeProgress([]model.Question{q}, nil, respondentID)
	if err != ErrUnknownQuestionType {
		t.Errorf("err = %v, want ErrUnknownQuestionType", err)
	}
}
