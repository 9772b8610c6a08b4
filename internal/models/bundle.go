package models

import (
	"encoding/json"
	"sort"
)

// Bundle is the reference data snapshot returned by one genericData fetch. It is
// replaced wholesale on every committed fetch and never patched in place.
type Bundle struct {
	Sessions                 []Session          `json:"sessions"`
	Classes                  []Class            `json:"classes"`
	Terms                    []Term             `json:"terms"`
	Subjects                 []Subject          `json:"subjects"`
	ClassTypes               []ClassType        `json:"classTypes"`
	Questions                QuestionPage       `json:"questions"`
	StudentsPerClass         []StudentsPerClass `json:"studentsPerClass"`
	FeePaymentStatusPerClass []FeePaymentStatus `json:"feePaymentStatusPerClass"`
}

// EmptyBundle returns a bundle whose collections serialise as [] rather than null.
func EmptyBundle() Bundle {
	return Bundle{
		Sessions:                 []Session{},
		Classes:                  []Class{},
		Terms:                    []Term{},
		Subjects:                 []Subject{},
		ClassTypes:               []ClassType{},
		Questions:                QuestionPage{Items: []Question{}},
		StudentsPerClass:         []StudentsPerClass{},
		FeePaymentStatusPerClass: []FeePaymentStatus{},
	}
}

// ClassByID finds a class in the bundle.
func (b Bundle) ClassByID(id string) (Class, bool) {
	for _, c := range b.Classes {
		if string(c.ID) == id {
			return c, true
		}
	}
	return Class{}, false
}

// SessionName resolves a session id to its name, falling back to the id.
func (b Bundle) SessionName(id ID) string {
	for _, s := range b.Sessions {
		if s.ID == id {
			return s.Name
		}
	}
	return string(id)
}

// ClassTypeName resolves a class type id to its name, falling back to the id.
func (b Bundle) ClassTypeName(id ID) string {
	for _, ct := range b.ClassTypes {
		if ct.ID == id {
			return ct.Name
		}
	}
	return string(id)
}

// SubjectsForClass returns the subjects selectable once classID is chosen:
// those sharing the class's class type. Unknown classes yield no subjects.
func SubjectsForClass(b Bundle, classID string) []Subject {
	class, ok := b.ClassByID(classID)
	if !ok {
		return []Subject{}
	}
	return SubjectsForClassType(b, string(class.ClassTypeID))
}

// SubjectsForClassType filters subjects by class type; an empty id returns all.
func SubjectsForClassType(b Bundle, classTypeID string) []Subject {
	subjects := make([]Subject, 0, len(b.Subjects))
	for _, s := range b.Subjects {
		if classTypeID == "" || string(s.ClassTypeID) == classTypeID {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

// StudentsPerClass is the server-side enrollment count for one class.
type StudentsPerClass struct {
	ClassID       ID     `json:"classId"`
	ClassName     string `json:"className"`
	TotalStudents int    `json:"totalStudents"`
}

// SortStudentsPerClass returns a copy ordered by enrollment, largest first.
func SortStudentsPerClass(rows []StudentsPerClass) []StudentsPerClass {
	sorted := append([]StudentsPerClass(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalStudents > sorted[j].TotalStudents
	})
	return sorted
}

// FeeShape tags which aggregate variant a fee row carries.
type FeeShape string

const (
	FeeShapePerTerm      FeeShape = "perTerm"
	FeeShapeSelectedTerm FeeShape = "selectedTerm"
)

// PaidUnpaid is a pair of student counts.
type PaidUnpaid struct {
	Paid   int `json:"paid"`
	Unpaid int `json:"unpaid"`
}

// FeeAggregate is either PerTermFees (no term filter) or SelectedTermFees (term
// filter active). The variant is fixed when the bundle is committed.
type FeeAggregate interface {
	Shape() FeeShape
}

// PerTermFees holds paid/unpaid counts for each of the three terms.
type PerTermFees struct {
	First  PaidUnpaid
	Second PaidUnpaid
	Third  PaidUnpaid
}

// Shape implements FeeAggregate.
func (PerTermFees) Shape() FeeShape { return FeeShapePerTerm }

// SelectedTermFees holds paid/unpaid counts for the filtered term only.
type SelectedTermFees struct {
	Paid   int
	Unpaid int
}

// Shape implements FeeAggregate.
func (SelectedTermFees) Shape() FeeShape { return FeeShapeSelectedTerm }

// FeePaymentStatus is the fee aggregate for one class.
type FeePaymentStatus struct {
	ClassID       ID
	ClassName     string
	TotalStudents int
	Fees          FeeAggregate
}

type feePaymentStatusJSON struct {
	ClassID          ID       `json:"classId"`
	ClassName        string   `json:"className"`
	TotalStudents    int      `json:"totalStudents"`
	Shape            FeeShape `json:"shape"`
	FirstTermPaid    *int     `json:"firstTermPaid,omitempty"`
	FirstTermUnpaid  *int     `json:"firstTermUnpaid,omitempty"`
	SecondTermPaid   *int     `json:"secondTermPaid,omitempty"`
	SecondTermUnpaid *int     `json:"secondTermUnpaid,omitempty"`
	ThirdTermPaid    *int     `json:"thirdTermPaid,omitempty"`
	ThirdTermUnpaid  *int     `json:"thirdTermUnpaid,omitempty"`
	PaidCount        *int     `json:"paidCount,omitempty"`
	UnpaidCount      *int     `json:"unpaidCount,omitempty"`
}

// MarshalJSON renders the row in the same field layout the school API uses for
// its variant, plus an explicit shape tag.
func (f FeePaymentStatus) MarshalJSON() ([]byte, error) {
	out := feePaymentStatusJSON{ClassID: f.ClassID, ClassName: f.ClassName, TotalStudents: f.TotalStudents}
	switch fees := f.Fees.(type) {
	case PerTermFees:
		out.Shape = FeeShapePerTerm
		out.FirstTermPaid, out.FirstTermUnpaid = intPtr(fees.First.Paid), intPtr(fees.First.Unpaid)
		out.SecondTermPaid, out.SecondTermUnpaid = intPtr(fees.Second.Paid), intPtr(fees.Second.Unpaid)
		out.ThirdTermPaid, out.ThirdTermUnpaid = intPtr(fees.Third.Paid), intPtr(fees.Third.Unpaid)
	case SelectedTermFees:
		out.Shape = FeeShapeSelectedTerm
		out.PaidCount, out.UnpaidCount = intPtr(fees.Paid), intPtr(fees.Unpaid)
	}
	return json.Marshal(out)
}

// FeeTotals are the headline totals across all classes.
type FeeTotals struct {
	Shape         FeeShape `json:"shape"`
	TotalPaid     int      `json:"totalPaid"`
	TotalUnpaid   int      `json:"totalUnpaid"`
	TotalStudents int      `json:"totalStudents"`
}

// SumFees adds up the fee rows, branching on each row's variant: paidCount and
// unpaidCount for a selected term, the three term pairs otherwise.
func SumFees(rows []FeePaymentStatus) FeeTotals {
	totals := FeeTotals{Shape: FeeShapePerTerm}
	for _, row := range rows {
		totals.TotalStudents += row.TotalStudents
		switch fees := row.Fees.(type) {
		case PerTermFees:
			totals.TotalPaid += fees.First.Paid + fees.Second.Paid + fees.Third.Paid
			totals.TotalUnpaid += fees.First.Unpaid + fees.Second.Unpaid + fees.Third.Unpaid
		case SelectedTermFees:
			totals.Shape = FeeShapeSelectedTerm
			totals.TotalPaid += fees.Paid
			totals.TotalUnpaid += fees.Unpaid
		}
	}
	return totals
}

// FeeRowTotal returns paid+unpaid for one row, used to order the fee chart.
func FeeRowTotal(row FeePaymentStatus) int {
	t := SumFees([]FeePaymentStatus{row})
	return t.TotalPaid + t.TotalUnpaid
}

// SortFeePaymentStatus returns a copy ordered by paid+unpaid, largest first.
func SortFeePaymentStatus(rows []FeePaymentStatus) []FeePaymentStatus {
	sorted := append([]FeePaymentStatus(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return FeeRowTotal(sorted[i]) > FeeRowTotal(sorted[j])
	})
	return sorted
}

func intPtr(v int) *int { return &v }
