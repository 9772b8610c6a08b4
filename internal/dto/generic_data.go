package dto

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/noah-isme/school-console/internal/models"
)

// GenericDataQuery is the request descriptor for GET /genericData. Empty fields
// are omitted from the query string.
type GenericDataQuery struct {
	SessionID    string              `json:"sessionId,omitempty"`
	TermID       string              `json:"termId,omitempty"`
	ClassID      string              `json:"classId,omitempty"`
	QuestionType models.QuestionType `json:"questionType,omitempty"`
	Page         int                 `json:"page"`
	PageSize     int                 `json:"pageSize"`
}

// Values encodes the query parameters.
func (q GenericDataQuery) Values() url.Values {
	values := url.Values{}
	if q.SessionID != "" {
		values.Set("sessionId", q.SessionID)
	}
	if q.TermID != "" {
		values.Set("termId", q.TermID)
	}
	if q.ClassID != "" {
		values.Set("classId", q.ClassID)
	}
	if q.QuestionType != "" {
		values.Set("questionType", string(q.QuestionType))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return values
}

// TermFiltered reports whether the query narrows to a single term.
func (q GenericDataQuery) TermFiltered() bool {
	return q.TermID != ""
}

// GenericDataResponse mirrors the genericData payload of the school API.
type GenericDataResponse struct {
	Sessions                 []models.Session         `json:"sessions"`
	Classes                  []models.Class           `json:"classes"`
	Terms                    []models.Term            `json:"terms"`
	Subjects                 []models.Subject         `json:"subjects"`
	ClassTypes               []models.ClassType       `json:"classTypes"`
	Questions                QuestionsEnvelope        `json:"questions"`
	StudentsPerClass         []StudentsPerClassRecord `json:"studentsPerClass"`
	FeePaymentStatusPerClass []FeePaymentRecord       `json:"feePaymentStatusPerClass"`
}

// QuestionsEnvelope accepts either {items,totalRecords,totalPages} or a bare array.
type QuestionsEnvelope struct {
	Items        []QuestionRecord `json:"items"`
	TotalRecords *int             `json:"totalRecords,omitempty"`
	TotalPages   *int             `json:"totalPages,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *QuestionsEnvelope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = QuestionsEnvelope{}
		return nil
	}
	if data[0] == '[' {
		var items []QuestionRecord
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*e = QuestionsEnvelope{Items: items}
		return nil
	}
	type plain QuestionsEnvelope
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = QuestionsEnvelope(decoded)
	return nil
}

// QuestionRecord is a question as the school API returns it, with nested refs.
type QuestionRecord struct {
	ID           models.ID        `json:"id"`
	Subject      *models.NamedRef `json:"subject"`
	Class        *models.NamedRef `json:"class"`
	Session      *models.NamedRef `json:"session"`
	Term         *models.NamedRef `json:"term"`
	SubjectID    models.ID        `json:"subjectId"`
	ClassID      models.ID        `json:"classId"`
	SessionID    models.ID        `json:"sessionId"`
	TermID       models.ID        `json:"termId"`
	Type         string           `json:"type"`
	QuestionText string           `json:"questionText"`
	QuestionFile string           `json:"questionFile"`
}

// ToModel flattens the nested refs, preferring them over the flat id fields.
func (r QuestionRecord) ToModel() models.Question {
	q := models.Question{
		ID:           r.ID,
		SubjectID:    r.SubjectID,
		ClassID:      r.ClassID,
		SessionID:    r.SessionID,
		TermID:       r.TermID,
		Type:         models.QuestionType(r.Type),
		QuestionText: r.QuestionText,
		QuestionFile: r.QuestionFile,
	}
	if qt, ok := models.QuestionTypeForIndex(r.Type); ok {
		q.Type = qt
	}
	if r.Subject != nil {
		q.SubjectID = r.Subject.ID
		q.SubjectName = r.Subject.Name
	}
	if r.Class != nil {
		q.ClassID = r.Class.ID
	}
	if r.Session != nil {
		q.SessionID = r.Session.ID
	}
	if r.Term != nil {
		q.TermID = r.Term.ID
	}
	return q
}

// StudentsPerClassRecord is one enrollment count row; older payloads use
// "class"/"count" instead of "className"/"totalStudents".
type StudentsPerClassRecord struct {
	ClassID       models.ID `json:"classId"`
	ClassName     string    `json:"className"`
	Class         string    `json:"class"`
	TotalStudents *int      `json:"totalStudents"`
	Count         *int      `json:"count"`
}

// ToModel normalises the row.
func (r StudentsPerClassRecord) ToModel() models.StudentsPerClass {
	row := models.StudentsPerClass{ClassID: r.ClassID, ClassName: r.ClassName}
	if row.ClassName == "" {
		row.ClassName = r.Class
	}
	switch {
	case r.TotalStudents != nil:
		row.TotalStudents = *r.TotalStudents
	case r.Count != nil:
		row.TotalStudents = *r.Count
	}
	return row
}

// FeePaymentRecord carries both server shapes; which fields are meaningful
// depends on whether the request had a term filter.
type FeePaymentRecord struct {
	ClassID          models.ID `json:"classId"`
	ClassName        string    `json:"className"`
	Class            string    `json:"class"`
	TotalStudents    int       `json:"totalStudents"`
	FirstTermPaid    int       `json:"firstTermPaid"`
	FirstTermUnpaid  int       `json:"firstTermUnpaid"`
	SecondTermPaid   int       `json:"secondTermPaid"`
	SecondTermUnpaid int       `json:"secondTermUnpaid"`
	ThirdTermPaid    int       `json:"thirdTermPaid"`
	ThirdTermUnpaid  int       `json:"thirdTermUnpaid"`
	PaidCount        int       `json:"paidCount"`
	UnpaidCount      int       `json:"unpaidCount"`
}

// ToModel picks the aggregate variant once, from the term filter of the request.
func (r FeePaymentRecord) ToModel(termFiltered bool) models.FeePaymentStatus {
	row := models.FeePaymentStatus{ClassID: r.ClassID, ClassName: r.ClassName, TotalStudents: r.TotalStudents}
	if row.ClassName == "" {
		row.ClassName = r.Class
	}
	if termFiltered {
		row.Fees = models.SelectedTermFees{Paid: r.PaidCount, Unpaid: r.UnpaidCount}
		return row
	}
	row.Fees = models.PerTermFees{
		First:  models.PaidUnpaid{Paid: r.FirstTermPaid, Unpaid: r.FirstTermUnpaid},
		Second: models.PaidUnpaid{Paid: r.SecondTermPaid, Unpaid: r.SecondTermUnpaid},
		Third:  models.PaidUnpaid{Paid: r.ThirdTermPaid, Unpaid: r.ThirdTermUnpaid},
	}
	return row
}

// ToBundle converts the payload into a bundle for the query that produced it,
// deriving totalRecords and totalPages when the server leaves them out.
func (r GenericDataResponse) ToBundle(query GenericDataQuery) models.Bundle {
	bundle := models.EmptyBundle()
	if r.Sessions != nil {
		bundle.Sessions = r.Sessions
	}
	if r.Classes != nil {
		bundle.Classes = r.Classes
	}
	if r.Terms != nil {
		bundle.Terms = r.Terms
	}
	if r.Subjects != nil {
		bundle.Subjects = r.Subjects
	}
	if r.ClassTypes != nil {
		bundle.ClassTypes = r.ClassTypes
	}

	items := make([]models.Question, 0, len(r.Questions.Items))
	for _, record := range r.Questions.Items {
		items = append(items, record.ToModel())
	}
	totalRecords := len(items)
	if r.Questions.TotalRecords != nil {
		totalRecords = *r.Questions.TotalRecords
	}
	totalPages := models.TotalPagesFor(totalRecords, query.PageSize)
	if r.Questions.TotalPages != nil {
		totalPages = *r.Questions.TotalPages
	}
	bundle.Questions = models.QuestionPage{Items: items, TotalRecords: totalRecords, TotalPages: totalPages}

	for _, record := range r.StudentsPerClass {
		bundle.StudentsPerClass = append(bundle.StudentsPerClass, record.ToModel())
	}
	termFiltered := query.TermFiltered()
	for _, record := range r.FeePaymentStatusPerClass {
		bundle.FeePaymentStatusPerClass = append(bundle.FeePaymentStatusPerClass, record.ToModel(termFiltered))
	}
	return bundle
}
