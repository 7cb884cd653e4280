package model

// QuestionType is the closed set of supported answer shapes.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeMultiChoice  QuestionType = "multi_choice"
	QuestionTypeFreeText     QuestionType = "free_text"
	QuestionTypeNumericRange QuestionType = "numeric_range"
)

// QuestionTypeDefinition is a seeded catalog row describing one answer shape.
type QuestionTypeDefinition struct {
	ID    int          `json:"id"`
	Name  QuestionType `json:"name"`
	Label string       `json:"label"`
}

// QuestionTypeCatalog lists every supported question type with its display
// label. Seeded once by cmd/seed-catalog; the engine dispatches on the
// QuestionType constants, never on free-form strings.
func QuestionTypeCatalog() []QuestionTypeDefinition {
	return []QuestionTypeDefinition{
		{ID: 1, Name: QuestionTypeSingleChoice, Label: "Selección única"},
		{ID: 2, Name: QuestionTypeMultiChoice, Label: "Selección múltiple"},
		{ID: 3, Name: QuestionTypeFreeText, Label: "Texto libre"},
		{ID: 4, Name: QuestionTypeNumericRange, Label: "Rango numérico"},
	}
}

// IsValid reports whether t is one of the supported question types.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultiChoice, QuestionTypeFreeText, QuestionTypeNumericRange:
		return true
	}
	return false
}

// SingleValued reports whether at most one answer row is expected per
// (respondent, question). A new single-valued answer replaces prior rows;
// multi-choice accumulates.
func (t QuestionType) SingleValued() bool {
	return t != QuestionTypeMultiChoice
}
