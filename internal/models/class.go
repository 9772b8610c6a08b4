package models

// ClassType groups classes (e.g. "Junior Secondary") and scopes their subjects.
type ClassType struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Class belongs to exactly one Session and one ClassType.
type Class struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	ClassTeacher string `json:"classTeacher"`
	ClassTypeID  ID     `json:"classTypeId"`
	SessionID    ID     `json:"sessionId"`
}
