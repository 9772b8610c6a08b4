package models

import "encoding/json"

// DefaultPageSize is the page size applied when none is configured.
const DefaultPageSize = 10

// Filters is the dashboard filter state. Empty strings mean "no filter".
type Filters struct {
	SessionID    string `json:"sessionId"`
	TermID       string `json:"termId"`
	ClassID      string `json:"classId"`
	QuestionType string `json:"questionType"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

// DefaultFilters returns the cleared filter state for the given page size.
func DefaultFilters(pageSize int) Filters {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Filters{Page: 1, PageSize: pageSize}
}

// HasActive reports whether any narrowing filter is set.
func (f Filters) HasActive() bool {
	return f.SessionID != "" || f.TermID != "" || f.ClassID != "" || f.QuestionType != ""
}

// FilterPatch is a partial filter update; nil fields are retained.
type FilterPatch struct {
	SessionID    *string `json:"sessionId,omitempty"`
	TermID       *string `json:"termId,omitempty"`
	ClassID      *string `json:"classId,omitempty"`
	QuestionType *string `json:"questionType,omitempty"`
	Page         *int    `json:"page,omitempty"`
	PageSize     *int    `json:"pageSize,omitempty"`
}

// UnmarshalJSON accepts the selector fields as JSON strings or numbers, so a
// question type index may arrive as 0 or "0". null leaves a field unset.
func (p *FilterPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		SessionID    *ID  `json:"sessionId"`
		TermID       *ID  `json:"termId"`
		ClassID      *ID  `json:"classId"`
		QuestionType *ID  `json:"questionType"`
		Page         *int `json:"page"`
		PageSize     *int `json:"pageSize"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FilterPatch{
		SessionID:    idPtrString(raw.SessionID),
		TermID:       idPtrString(raw.TermID),
		ClassID:      idPtrString(raw.ClassID),
		QuestionType: idPtrString(raw.QuestionType),
		Page:         raw.Page,
		PageSize:     raw.PageSize,
	}
	return nil
}

func idPtrString(id *ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// IsEmpty reports whether the patch names no field at all.
func (p FilterPatch) IsEmpty() bool {
	return p.SessionID == nil && p.TermID == nil && p.ClassID == nil &&
		p.QuestionType == nil && p.Page == nil && p.PageSize == nil
}

// Overlay shallow-merges the patch over f without enforcing page invariants.
func (p FilterPatch) Overlay(f Filters) Filters {
	if p.SessionID != nil {
		f.SessionID = *p.SessionID
	}
	if p.TermID != nil {
		f.TermID = *p.TermID
	}
	if p.ClassID != nil {
		f.ClassID = *p.ClassID
	}
	if p.QuestionType != nil {
		f.QuestionType = *p.QuestionType
	}
	if p.Page != nil {
		f.Page = *p.Page
	}
	if p.PageSize != nil {
		f.PageSize = *p.PageSize
	}
	return f
}

// FilterDisplayNames maps each filter id to its human readable name.
type FilterDisplayNames struct {
	SessionName string `json:"sessionName"`
	TermName    string `json:"termName"`
	ClassName   string `json:"className"`
	TypeName    string `json:"typeName"`
}

// DeriveDisplayNames looks every filter id up in the bundle, falling back to
// the raw id when the bundle has no matching entry (e.g. before first load).
func DeriveDisplayNames(f Filters, b Bundle) FilterDisplayNames {
	names := FilterDisplayNames{
		SessionName: f.SessionID,
		TermName:    f.TermID,
		ClassName:   f.ClassID,
		TypeName:    f.QuestionType,
	}
	if f.SessionID != "" {
		for _, s := range b.Sessions {
			if string(s.ID) == f.SessionID {
				names.SessionName = s.Name
				break
			}
		}
	}
	if f.TermID != "" {
		for _, t := range b.Terms {
			if string(t.ID) == f.TermID {
				names.TermName = t.Name
				break
			}
		}
	}
	if f.ClassID != "" {
		for _, c := range b.Classes {
			if string(c.ID) == f.ClassID {
				names.ClassName = c.Name
				break
			}
		}
	}
	if f.QuestionType != "" {
		if qt, ok := QuestionTypeForIndex(f.QuestionType); ok {
			names.TypeName = string(qt)
		}
	}
	return names
}

// ActiveFilter is one "chip" rendered above a filtered listing.
type ActiveFilter struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
	Name  string `json:"name"`
}

// ActiveFilters lists the set filters in display order with resolved names.
func ActiveFilters(f Filters, names FilterDisplayNames) []ActiveFilter {
	chips := make([]ActiveFilter, 0, 4)
	if f.SessionID != "" {
		chips = append(chips, ActiveFilter{Field: "sessionId", Label: "Session", Value: f.SessionID, Name: names.SessionName})
	}
	if f.ClassID != "" {
		chips = append(chips, ActiveFilter{Field: "classId", Label: "Class", Value: f.ClassID, Name: names.ClassName})
	}
	if f.TermID != "" {
		chips = append(chips, ActiveFilter{Field: "termId", Label: "Term", Value: f.TermID, Name: names.TermName})
	}
	if f.QuestionType != "" {
		chips = append(chips, ActiveFilter{Field: "questionType", Label: "Type", Value: f.QuestionType, Name: names.TypeName})
	}
	return chips
}
