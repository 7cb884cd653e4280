package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// newDomainQuestion builds a yes/no question assigned to a domain.
func newDomainQuestion(domain string) model.Question {
	q := newChoiceQuestion(true)
	q.Domain = strPtr(domain)
	return q
}

// answerWithValue selects the option whose value matches v.
func answerWithValue(t *testing.T, q model.Question, v string) model.Answer {
	t.Helper()
	for i := range q.Options {
		if q.Options[i].Value == v {
			return optionAnswer(q, i)
		}
	}
	t.Fatalf("question has no option with value %q", v)
	return model.Answer{}
}

func TestScoreDomainsCountsNegativeMarker(t *testing.T) {
	questions := make([]model.Question, 5)
	for i := range questions {
		questions[i] = newDomainQuestion("Conducta")
	}

	// 3 of 5 answered "no", 1 answered "si", 1 unanswered.
	answers := []model.Answer{
		answerWithValue(t, questions[0], "no"),
		answerWithValue(t, questions[1], "no"),
		answerWithValue(t, questions[2], "no"),
		answerWithValue(t, questions[3], "si"),
	}

	tables := map[string][]model.BandRange{
		"Conducta": {
			{Min: 0, Max: 1, Label: "Bajo"},
			{Min: 2, Max: 4, Label: "Promedio"},
			{Min: 5, Max: 5, Label: "Alto"},
		},
	}

	scores := ScoreDomains(questions, answers, respondentID, tables, "no", time.Now())
	if len(scores) != 1 {
		t.Fatalf("got %d domain scores, want 1", len(scores))
	}
	s := scores[0]
	if s.Domain != "Conducta" || s.RawScore != 3 || s.QuestionCount != 5 {
		t.Errorf("score = %+v, want Conducta raw=3 count=5", s)
	}
	if s.Band != "Promedio" {
		t.Errorf("band = %q, want Promedio", s.Band)
	}
}

func TestScoreDomainsMarkerIsCaseInsensitive(t *testing.T) {
	q := newDomainQuestion("Sueño")
	q.Options[1].Value = "NO"

	tables := map[string][]model.BandRange{
		"Sueño": {{Min: 1, Max: 1, Label: "Alto"}},
	}
	scores := ScoreDomains([]model.Question{q}, []model.Answer{optionAnswer(q, 1)}, respondentID, tables, "no", time.Now())
	if scores[0].RawScore != 1 || scores[0].Band != "Alto" {
		t.Errorf("case-insensitive marker not matched: %+v", scores[0])
	}
}

func TestLookupBandBoundaries(t *testing.T) {
	tables := map[string][]model.BandRange{
		"Lenguaje": {
			{Min: 0, Max: 17, Label: "Bajo"},
			{Min: 18, Max: 19, Label: "Promedio"},
			{Min: 20, Max: 25, Label: "Alto"},
		},
	}

	tests := []struct {
		raw  int
		want string
	}{
		{17, "Bajo"},
		{18, "Promedio"}, // Lower boundary belongs to its own range.
		{19, "Promedio"},
		{20, "Alto"},
		{26, BandOutOfRange},
	}
	for _, tt := range tests {
		if got := LookupBand(tables, "Lenguaje", tt.raw); got != tt.want {
			t.Errorf("LookupBand(%d) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLookupBandMissingDomain(t *testing.T) {
	if got := LookupBand(map[string][]model.BandRange{}, "Motricidad", 3); got != BandNotAvailable {
		t.Errorf("missing table: got %q, want %q", got, BandNotAvailable)
	}
	empty := map[string][]model.BandRange{"Motricidad": {}}
	if got := LookupBand(empty, "Motricidad", 3); got != BandNotAvailable {
		t.Errorf("empty table: got %q, want %q", got, BandNotAvailable)
	}
}

func TestScoreDomainsPreservesFirstAppearanceOrder(t *testing.T) {
	qs := []model.Question{
		newDomainQuestion("B"),
		newDomainQuestion("A"),
		newDomainQuestion("B"),
	}
	scores := ScoreDomains(qs, nil, respondentID, nil, "no", time.Now())
	if len(scores) != 2 || scores[0].Domain != "B" || scores[1].Domain != "A" {
		t.Errorf("domain order = %+v, want B then A", scores)
	}
	if scores[0].QuestionCount != 2 || scores[1].QuestionCount != 1 {
		t.Errorf("question counts wrong: %+v", scores)
	}
}

func TestScoreDomainsSkipsUndomainedQuestions(t *testing.T) {
	plain := newChoiceQuestion(true)
	domained := newDomainQuestion("Afectividad")
	scores := ScoreDomains([]model.Question{plain, domained}, nil, respondentID, nil, "no", time.Now())
	if len(scores) != 1 || scores[0].Domain != "Afectividad" {
		t.Errorf("scores = %+v, want only Afectividad", scores)
	}
}

func TestScoreDomainsIgnoresForeignOptionIDs(t *testing.T) {
	q := newDomainQuestion("Conducta")
	bogus := model.Answer{ID: uuid.New(), QuestionID: q.ID, PatientID: respondentID, OptionID: uuidPtr(uuid.New())}
	scores := ScoreDomains([]model.Question{q}, []model.Answer{bogus}, respondentID, nil, "no", time.Now())
	if scores[0].RawScore != 0 {
		t.Errorf("raw score = %d, want 0 for dangling option reference", scores[0].RawScore)
	}
}
