package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumFeesPerTermShape(t *testing.T) {
	rows := []FeePaymentStatus{
		{ClassID: "1", TotalStudents: 30, Fees: PerTermFees{
			First:  PaidUnpaid{Paid: 10, Unpaid: 20},
			Second: PaidUnpaid{Paid: 5, Unpaid: 25},
			Third:  PaidUnpaid{Paid: 1, Unpaid: 29},
		}},
		{ClassID: "2", TotalStudents: 20, Fees: PerTermFees{
			First:  PaidUnpaid{Paid: 20},
			Second: PaidUnpaid{Paid: 2, Unpaid: 18},
			Third:  PaidUnpaid{Unpaid: 20},
		}},
	}

	totals := SumFees(rows)

	assert.Equal(t, FeeShapePerTerm, totals.Shape)
	assert.Equal(t, 10+5+1+20+2, totals.TotalPaid)
	assert.Equal(t, 20+25+29+18+20, totals.TotalUnpaid)
	assert.Equal(t, 50, totals.TotalStudents)
}

func TestSumFeesSelectedTermShape(t *testing.T) {
	rows := []FeePaymentStatus{
		{ClassID: "1", TotalStudents: 30, Fees: SelectedTermFees{Paid: 12, Unpaid: 18}},
		{ClassID: "2", TotalStudents: 20, Fees: SelectedTermFees{Paid: 15, Unpaid: 5}},
	}

	totals := SumFees(rows)

	assert.Equal(t, FeeShapeSelectedTerm, totals.Shape)
	assert.Equal(t, 27, totals.TotalPaid)
	assert.Equal(t, 23, totals.TotalUnpaid)
}

func TestFeePaymentStatusMarshalKeepsUpstreamLayout(t *testing.T) {
	row := FeePaymentStatus{ClassID: "1", ClassName: "JSS1A", TotalStudents: 3, Fees: SelectedTermFees{Paid: 2, Unpaid: 1}}

	raw, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "selectedTerm", decoded["shape"])
	assert.EqualValues(t, 2, decoded["paidCount"])
	assert.NotContains(t, decoded, "firstTermPaid")
}

func TestSortFeePaymentStatusByTotal(t *testing.T) {
	rows := []FeePaymentStatus{
		{ClassID: "small", Fees: SelectedTermFees{Paid: 1, Unpaid: 1}},
		{ClassID: "large", Fees: SelectedTermFees{Paid: 10, Unpaid: 5}},
	}

	sorted := SortFeePaymentStatus(rows)

	assert.Equal(t, ID("large"), sorted[0].ClassID)
	assert.Equal(t, ID("small"), rows[0].ClassID)
}

func TestSubjectsForClass(t *testing.T) {
	bundle := EmptyBundle()
	bundle.Classes = []Class{{ID: "c1", ClassTypeID: "junior"}}
	bundle.Subjects = []Subject{
		{ID: "s1", Name: "Basic Science", ClassTypeID: "junior"},
		{ID: "s2", Name: "Physics", ClassTypeID: "senior"},
	}

	subjects := SubjectsForClass(bundle, "c1")
	require.Len(t, subjects, 1)
	assert.Equal(t, "Basic Science", subjects[0].Name)
	assert.Empty(t, SubjectsForClass(bundle, "missing"))
	assert.Len(t, SubjectsForClassType(bundle, ""), 2)
}

func TestIDUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"x-1","c":null}`), &payload))
	assert.Equal(t, ID("12"), payload.A)
	assert.Equal(t, ID("x-1"), payload.B)
	assert.Equal(t, ID(""), payload.C)
}
