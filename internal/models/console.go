package models

import "time"

// ConsoleSession is one authenticated console user session. The bearer token
// itself lives in the token store and is never serialised.
type ConsoleSession struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Resource names an upstream entity collection.
type Resource string

const (
	ResourceQuestions Resource = "questions"
	ResourceClasses   Resource = "classes"
	ResourceStudents  Resource = "students"
	ResourceSessions  Resource = "sessions"
	ResourceSubjects  Resource = "subjects"
)

// Valid reports whether r is one of the known entity collections.
func (r Resource) Valid() bool {
	switch r {
	case ResourceQuestions, ResourceClasses, ResourceStudents, ResourceSessions, ResourceSubjects:
		return true
	}
	return false
}
