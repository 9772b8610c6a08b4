package service

import "github.com/noah-isme/school-console/internal/models"

// FilterChange describes what an Apply call changed.
type FilterChange struct {
	// Changed is false when the patch left every field as it was.
	Changed bool
	// FilterFields is true when sessionId, termId, classId or questionType changed.
	FilterFields bool
	// Pagination is true when page or pageSize changed.
	Pagination bool
}

// FilterState holds the dashboard filters. It is not safe for concurrent use;
// DashboardContext serialises access under its own mutex.
type FilterState struct {
	current         models.Filters
	defaultPageSize int
}

// NewFilterState returns filters at their defaults.
func NewFilterState(defaultPageSize int) *FilterState {
	if defaultPageSize <= 0 {
		defaultPageSize = models.DefaultPageSize
	}
	return &FilterState{
		current:         models.DefaultFilters(defaultPageSize),
		defaultPageSize: defaultPageSize,
	}
}

// Current returns a copy of the filters.
func (s *FilterState) Current() models.Filters {
	return s.current
}

// Apply merges patch into the filters. Changing any filter field or the page
// size moves back to page 1; page values below 1 clamp to 1.
func (s *FilterState) Apply(patch models.FilterPatch) FilterChange {
	prev := s.current
	next := patch.Overlay(prev)

	if next.PageSize <= 0 {
		next.PageSize = s.defaultPageSize
	}

	change := FilterChange{
		FilterFields: next.SessionID != prev.SessionID ||
			next.TermID != prev.TermID ||
			next.ClassID != prev.ClassID ||
			next.QuestionType != prev.QuestionType,
	}

	if change.FilterFields || next.PageSize != prev.PageSize {
		next.Page = 1
	}
	if next.Page < 1 {
		next.Page = 1
	}

	change.Pagination = next.Page != prev.Page || next.PageSize != prev.PageSize
	change.Changed = change.FilterFields || change.Pagination
	if change.Changed {
		s.current = next
	}
	return change
}

// Clear resets every field to its default. Calling it twice changes nothing
// the second time.
func (s *FilterState) Clear() FilterChange {
	defaults := models.DefaultFilters(s.defaultPageSize)
	return s.Apply(models.FilterPatch{
		SessionID:    &defaults.SessionID,
		TermID:       &defaults.TermID,
		ClassID:      &defaults.ClassID,
		QuestionType: &defaults.QuestionType,
		Page:         &defaults.Page,
		PageSize:     &defaults.PageSize,
	})
}
