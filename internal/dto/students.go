package dto

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/school-console/internal/models"
)

// AllStudentsQuery is the request for GET /students/all.
type AllStudentsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Search   string `form:"search"`
}

// Values encodes the query; the search term is trimmed and omitted when blank.
func (q AllStudentsQuery) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("pageSize", strconv.Itoa(q.PageSize))
	if search := strings.TrimSpace(q.Search); search != "" {
		values.Set("search", search)
	}
	return values
}

// StudentsResponse is the student listing payload. The school API answers with
// either a bare array or {studentRecords,totalRecords|total}.
type StudentsResponse struct {
	StudentRecords []models.Student `json:"studentRecords"`
	TotalRecords   *int             `json:"totalRecords,omitempty"`
	Total          *int             `json:"total,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *StudentsResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = StudentsResponse{}
		return nil
	}
	if data[0] == '[' {
		var items []models.Student
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*r = StudentsResponse{StudentRecords: items}
		return nil
	}
	type plain StudentsResponse
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = StudentsResponse(decoded)
	return nil
}

// Count resolves the record total: totalRecords, then total, then the page length.
func (r StudentsResponse) Count() int {
	if r.TotalRecords != nil && *r.TotalRecords > 0 {
		return *r.TotalRecords
	}
	if r.Total != nil && *r.Total > 0 {
		return *r.Total
	}
	return len(r.StudentRecords)
}

// ToPage builds the page descriptor; there is always at least one page.
func (r StudentsResponse) ToPage(page, pageSize int) models.StudentPage {
	items := r.StudentRecords
	if items == nil {
		items = []models.Student{}
	}
	total := r.Count()
	pages := models.TotalPagesFor(total, pageSize)
	if pages < 1 {
		pages = 1
	}
	return models.StudentPage{
		Items:        items,
		TotalRecords: total,
		TotalPages:   pages,
		Page:         page,
		PageSize:     pageSize,
	}
}
