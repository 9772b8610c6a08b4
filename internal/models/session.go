package models

// Session identifies an academic year such as "2024/2025".
type Session struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
