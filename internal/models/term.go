package models

// Term is a sub-period (First/Second/Third Term) within a session cycle.
type Term struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// TermOrdinal names the three fee-bearing terms of a session.
type TermOrdinal string

const (
	TermFirst  TermOrdinal = "first"
	TermSecond TermOrdinal = "second"
	TermThird  TermOrdinal = "third"
)
