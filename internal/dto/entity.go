package dto

import "github.com/noah-isme/school-console/internal/models"

// EntityPayload is a create-or-update body for POST /{resource}. A non-empty,
// non-zero EntityID marks the request as an update.
type EntityPayload interface {
	Resource() models.Resource
	EntityID() models.ID
}

// IsUpdate reports whether the payload targets an existing entity.
func IsUpdate(p EntityPayload) bool {
	id := p.EntityID()
	return id != "" && id != "0"
}

// QuestionPayload captures the question form. Type accepts either the symbolic
// name or the selector index; the entity service normalises it.
type QuestionPayload struct {
	ID           models.ID `json:"id,omitempty"`
	SubjectID    models.ID `json:"subjectId" validate:"required"`
	ClassID      models.ID `json:"classId" validate:"required"`
	Type         string    `json:"type" validate:"required"`
	TermID       models.ID `json:"termId" validate:"required"`
	SessionID    models.ID `json:"sessionId" validate:"required"`
	QuestionText string    `json:"questionText,omitempty"`
	QuestionFile string    `json:"questionFile,omitempty"`
}

func (QuestionPayload) Resource() models.Resource { return models.ResourceQuestions }
func (p QuestionPayload) EntityID() models.ID     { return p.ID }

// ClassPayload captures the class form.
type ClassPayload struct {
	ID           models.ID `json:"id,omitempty"`
	Name         string    `json:"name" validate:"required"`
	ClassTeacher string    `json:"classTeacher"`
	ClassTypeID  models.ID `json:"classTypeId" validate:"required"`
	SessionID    models.ID `json:"sessionId" validate:"required"`
}

func (ClassPayload) Resource() models.Resource { return models.ResourceClasses }
func (p ClassPayload) EntityID() models.ID     { return p.ID }

// SessionPayload captures the academic session form.
type SessionPayload struct {
	ID   models.ID `json:"id,omitempty"`
	Name string    `json:"name" validate:"required"`
}

func (SessionPayload) Resource() models.Resource { return models.ResourceSessions }
func (p SessionPayload) EntityID() models.ID     { return p.ID }

// SubjectPayload captures the subject form.
type SubjectPayload struct {
	ID          models.ID `json:"id,omitempty"`
	Name        string    `json:"name" validate:"required"`
	ClassTypeID models.ID `json:"classTypeId" validate:"required"`
}

func (SubjectPayload) Resource() models.Resource { return models.ResourceSubjects }
func (p SubjectPayload) EntityID() models.ID     { return p.ID }

// StudentPayload captures the student form.
type StudentPayload struct {
	ID               models.ID `json:"id,omitempty"`
	Name             string    `json:"name" validate:"required"`
	ClassID          models.ID `json:"classId" validate:"required"`
	SessionID        models.ID `json:"sessionId" validate:"required"`
	AdmissionNumber  string    `json:"admissionNumber,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	DOB              string    `json:"dob,omitempty"`
	ParentName       string    `json:"parentName,omitempty"`
	ParentPhone      string    `json:"parentPhone,omitempty"`
	ParentAddress    string    `json:"parentAddress,omitempty"`
	ParentReligion   string    `json:"parentReligion,omitempty"`
	StateOfOrigin    string    `json:"stateOfOrigin,omitempty"`
	LGAOfOrigin      string    `json:"lgaOfOrigin,omitempty"`
	Tribe            string    `json:"tribe,omitempty"`
	ClassAtAdmission string    `json:"classAtAdmission,omitempty"`
	DateOfAdmission  string    `json:"dateOfAdmission,omitempty"`
	YearOfAdmission  models.ID `json:"yearOfAdmission,omitempty"`
	IsFeePaid        bool      `json:"isFeePaid"`
	Balance          float64   `json:"balance"`
}

func (StudentPayload) Resource() models.Resource { return models.ResourceStudents }
func (p StudentPayload) EntityID() models.ID     { return p.ID }

// EntityAck is returned by the console after a successful mutation.
type EntityAck struct {
	Resource  models.Resource `json:"resource"`
	ID        models.ID       `json:"id,omitempty"`
	Updated   bool            `json:"updated"`
	Refetched bool            `json:"refetched"`
}
