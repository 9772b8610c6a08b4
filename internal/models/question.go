package models

import "strconv"

// QuestionType is the symbolic question kind sent to the school API.
type QuestionType string

const (
	QuestionTypeCA   QuestionType = "CA"
	QuestionTypeExam QuestionType = "Exam"
)

// questionTypeIndex is the fixed index → name lookup used by the type selector.
var questionTypeIndex = []QuestionType{QuestionTypeCA, QuestionTypeExam}

// QuestionTypeOption is one entry of the question type selector.
type QuestionTypeOption struct {
	ID   string       `json:"id"`
	Name QuestionType `json:"name"`
}

// AvailableQuestionTypes lists the selector options in index order.
func AvailableQuestionTypes() []QuestionTypeOption {
	options := make([]QuestionTypeOption, len(questionTypeIndex))
	for i, qt := range questionTypeIndex {
		options[i] = QuestionTypeOption{ID: strconv.Itoa(i), Name: qt}
	}
	return options
}

// QuestionTypeForIndex translates a selector index ("0", "1") into its name.
func QuestionTypeForIndex(index string) (QuestionType, bool) {
	for i, qt := range questionTypeIndex {
		if strconv.Itoa(i) == index {
			return qt, true
		}
	}
	return "", false
}

// Question is a CA or Exam question scoped to a subject, class, session and term.
type Question struct {
	ID           ID           `json:"id"`
	SubjectID    ID           `json:"subjectId"`
	SubjectName  string       `json:"subjectName,omitempty"`
	ClassID      ID           `json:"classId"`
	SessionID    ID           `json:"sessionId"`
	TermID       ID           `json:"termId"`
	Type         QuestionType `json:"type"`
	QuestionText string       `json:"questionText,omitempty"`
	QuestionFile string       `json:"questionFile,omitempty"`
}

// QuestionPage is the paginated question slice of a bundle.
type QuestionPage struct {
	Items        []Question `json:"items"`
	TotalRecords int        `json:"totalRecords"`
	TotalPages   int        `json:"totalPages"`
}
