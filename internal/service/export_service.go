package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/export"
)

// ExportReport names an exportable dataset.
type ExportReport string

const (
	ExportReportFees      ExportReport = "fees"
	ExportReportStudents  ExportReport = "students"
	ExportReportQuestions ExportReport = "questions"
)

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders the views of a dashboard snapshot as CSV or PDF.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export builds the dataset for report from the snapshot and renders it.
func (s *ExportService) Export(snap DashboardSnapshot, report ExportReport, format export.Format) (*ExportFile, error) {
	var (
		data export.Dataset
		err  error
	)
	switch report {
	case ExportReportFees:
		data = feesDataset(snap)
	case ExportReportStudents:
		data = studentsDataset(snap)
	case ExportReportQuestions:
		data = questionsDataset(snap)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report %q", report))
	}
	if err != nil {
		return nil, err
	}

	var out []byte
	switch format {
	case export.FormatPDF:
		out, err = s.pdf.Render(data)
	case export.FormatCSV:
		out, err = s.csv.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		s.logger.Error("render export", zap.String("report", string(report)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	base := fmt.Sprintf("%s-%s", report, s.now().UTC().Format("20060102-150405"))
	return &ExportFile{
		Filename:    format.Filename(base),
		ContentType: format.ContentType(),
		Data:        out,
	}, nil
}

func filterSubtitle(snap DashboardSnapshot) string {
	chips := models.ActiveFilters(snap.Filters, snap.DisplayNames)
	if len(chips) == 0 {
		return "All records"
	}
	parts := make([]string, 0, len(chips))
	for _, chip := range chips {
		parts = append(parts, fmt.Sprintf("%s: %s", chip.Label, chip.Name))
	}
	return strings.Join(parts, " | ")
}

func feesDataset(snap DashboardSnapshot) export.Dataset {
	rows := models.SortFeePaymentStatus(snap.Data.FeePaymentStatusPerClass)
	data := export.Dataset{Title: "Fee payment status", Subtitle: filterSubtitle(snap)}

	selected := snap.CommittedQuery.TermFiltered()
	if selected {
		data.Headers = []string{"Class", "Students", "Paid", "Unpaid"}
	} else {
		data.Headers = []string{"Class", "Students", "1st Paid", "1st Unpaid", "2nd Paid", "2nd Unpaid", "3rd Paid", "3rd Unpaid"}
	}

	var perTerm models.PerTermFees
	for _, row := range rows {
		record := map[string]string{
			"Class":    row.ClassName,
			"Students": strconv.Itoa(row.TotalStudents),
		}
		switch fees := row.Fees.(type) {
		case models.SelectedTermFees:
			record["Paid"] = strconv.Itoa(fees.Paid)
			record["Unpaid"] = strconv.Itoa(fees.Unpaid)
		case models.PerTermFees:
			record["1st Paid"], record["1st Unpaid"] = strconv.Itoa(fees.First.Paid), strconv.Itoa(fees.First.Unpaid)
			record["2nd Paid"], record["2nd Unpaid"] = strconv.Itoa(fees.Second.Paid), strconv.Itoa(fees.Second.Unpaid)
			record["3rd Paid"], record["3rd Unpaid"] = strconv.Itoa(fees.Third.Paid), strconv.Itoa(fees.Third.Unpaid)
			perTerm.First.Paid += fees.First.Paid
			perTerm.First.Unpaid += fees.First.Unpaid
			perTerm.Second.Paid += fees.Second.Paid
			perTerm.Second.Unpaid += fees.Second.Unpaid
			perTerm.Third.Paid += fees.Third.Paid
			perTerm.Third.Unpaid += fees.Third.Unpaid
		}
		data.Rows = append(data.Rows, record)
	}

	totals := models.SumFees(rows)
	data.Rows = append(data.Rows, map[string]string{
		"Class":      "Total",
		"Students":   strconv.Itoa(totals.TotalStudents),
		"Paid":       strconv.Itoa(totals.TotalPaid),
		"Unpaid":     strconv.Itoa(totals.TotalUnpaid),
		"1st Paid":   strconv.Itoa(perTerm.First.Paid),
		"1st Unpaid": strconv.Itoa(perTerm.First.Unpaid),
		"2nd Paid":   strconv.Itoa(perTerm.Second.Paid),
		"2nd Unpaid": strconv.Itoa(perTerm.Second.Unpaid),
		"3rd Paid":   strconv.Itoa(perTerm.Third.Paid),
		"3rd Unpaid": strconv.Itoa(perTerm.Third.Unpaid),
	})
	return data
}

func studentsDataset(snap DashboardSnapshot) export.Dataset {
	rows := models.SortStudentsPerClass(snap.Data.StudentsPerClass)
	data := export.Dataset{
		Title:    "Students per class",
		Subtitle: filterSubtitle(snap),
		Headers:  []string{"Class", "Students"},
	}
	total := 0
	for _, row := range rows {
		total += row.TotalStudents
		data.Rows = append(data.Rows, map[string]string{
			"Class":    row.ClassName,
			"Students": strconv.Itoa(row.TotalStudents),
		})
	}
	data.Rows = append(data.Rows, map[string]string{"Class": "Total", "Students": strconv.Itoa(total)})
	return data
}

func questionsDataset(snap DashboardSnapshot) export.Dataset {
	bundle := snap.Data
	data := export.Dataset{
		Title:    "Questions",
		Subtitle: filterSubtitle(snap),
		Headers:  []string{"Subject", "Class", "Session", "Term", "Type", "Question"},
	}
	for _, q := range bundle.Questions.Items {
		className := q.ClassID.String()
		if class, ok := bundle.ClassByID(q.ClassID.String()); ok {
			className = class.Name
		}
		termName := q.TermID.String()
		for _, term := range bundle.Terms {
			if term.ID == q.TermID {
				termName = term.Name
				break
			}
		}
		subject := q.SubjectName
		if subject == "" {
			subject = q.SubjectID.String()
		}
		text := q.QuestionText
		if text == "" {
			text = q.QuestionFile
		}
		data.Rows = append(data.Rows, map[string]string{
			"Subject":  subject,
			"Class":    className,
			"Session":  bundle.SessionName(q.SessionID),
			"Term":     termName,
			"Type":     string(q.Type),
			"Question": text,
		})
	}
	return data
}
