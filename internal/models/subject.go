package models

// Subject belongs to one ClassType.
type Subject struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	ClassTypeID ID     `json:"classTypeId"`
}
