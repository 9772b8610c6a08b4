package models

// Student belongs to one Class and one Session. Fee fields are passed through
// exactly as the school API reports them, negative balances included.
type Student struct {
	ID               ID      `json:"id"`
	Name             string  `json:"name"`
	ClassID          ID      `json:"classId"`
	ClassName        string  `json:"className,omitempty"`
	SessionID        ID      `json:"sessionId"`
	AdmissionNumber  string  `json:"admissionNumber"`
	Gender           string  `json:"gender"`
	DOB              string  `json:"dob"`
	ParentName       string  `json:"parentName"`
	ParentPhone      string  `json:"parentPhone"`
	ParentAddress    string  `json:"parentAddress"`
	ParentReligion   string  `json:"parentReligion"`
	StateOfOrigin    string  `json:"stateOfOrigin"`
	LGAOfOrigin      string  `json:"lgaOfOrigin"`
	Tribe            string  `json:"tribe"`
	ClassAtAdmission string  `json:"classAtAdmission"`
	DateOfAdmission  string  `json:"dateOfAdmission"`
	YearOfAdmission  ID      `json:"yearOfAdmission"`
	IsFeePaid        bool    `json:"isFeePaid"`
	Balance          float64 `json:"balance"`

	IsFirstTermFeePaid  bool    `json:"isFirstTermFeePaid"`
	FirstTermBalance    float64 `json:"firstTermBalance"`
	IsSecondTermFeePaid bool    `json:"isSecondTermFeePaid"`
	SecondTermBalance   float64 `json:"secondTermBalance"`
	IsThirdTermFeePaid  bool    `json:"isThirdTermFeePaid"`
	ThirdTermBalance    float64 `json:"thirdTermBalance"`
}

// TermFee returns the paid flag and balance for one term.
func (s Student) TermFee(term TermOrdinal) (paid bool, balance float64) {
	switch term {
	case TermFirst:
		return s.IsFirstTermFeePaid, s.FirstTermBalance
	case TermSecond:
		return s.IsSecondTermFeePaid, s.SecondTermBalance
	case TermThird:
		return s.IsThirdTermFeePaid, s.ThirdTermBalance
	default:
		return s.IsFeePaid, s.Balance
	}
}

// StudentPage is one page of the all-students listing.
type StudentPage struct {
	Items        []Student `json:"items"`
	TotalRecords int       `json:"totalRecords"`
	TotalPages   int       `json:"totalPages"`
	Page         int       `json:"page"`
	PageSize     int       `json:"pageSize"`
}
