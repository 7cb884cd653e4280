package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// Progress is the result of ComputeProgress.
type Progress struct {
	Percent           int  `json:"percent"`
	MandatoryComplete bool `json:"mandatory_complete"`
	AnswerCount       int  `json:"answer_count"`
}

// ComputeProgress computes the completion percentage and the mandatory-
// complete flag for one respondent over an assessment's question set.
//
// A question counts toward the numerator when it is answered or when it is
// not mandatory; a mandatory unanswered question stays in the denominator
// only. With zero questions the result is {0, true}: there is nothing left
// to answer. Deterministic and idempotent over the same inputs.
func ComputeProgress(questions []model.Question, answers []model.Answer, respondentID int) (Progress, error) {
	total := len(questions)
	if total == 0 {
		return Progress{Percent: 0, MandatoryComplete: true}, nil
	}

	grouped := groupByQuestion(answers, respondentID)

	counted := 0
	mandatoryComplete := true
	for i := range questions {
		q := &questions[i]
		answered, err := Answered(q, grouped[q.ID])
		if err != nil {
			return Progress{}, err
		}
		if answered || !q.Mandatory {
			counted++
		}
		if q.Mandatory && !answered {
			mandatoryComplete = false
		}
	}

	percent := int(math.Round(100 * float64(counted) / float64(total)))

	return Progress{
		Percent:           percent,
		MandatoryComplete: mandatoryComplete,
		AnswerCount:       countForRespondent(answers, respondentID),
	}, nil
}

// groupByQuestion partitions the respondent's answer rows by question id.
// Order within a group is irrelevant to every predicate.
func groupByQuestion(answers []model.Answer, respondentID int) map[uuid.UUID][]model.Answer {
	grouped := make(map[uuid.UUID][]model.Answer, len(answers))
	for i := range answers {
		if answers[i].PatientID != respondentID {
			continue
		}
		grouped[answers[i].QuestionID] = append(grouped[answers[i].QuestionID], answers[i])
	}
	return grouped
}

func countForRespondent(answers []model.Answer, respondentID int) int {
	n := 0
	for i := range answers {
		if answers[i].PatientID == respondentID {
			n++
		}
	}
	return n
}
