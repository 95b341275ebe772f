// Package historyexport renders a user's analysis history as CSV or XLSX.
package historyexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"medlens/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" (also the default for "") or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.ErrUnsupportedExport
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// columns defines the header row shared by CSV and the XLSX analyses sheet.
var columns = []string{
	"Analysis ID",
	"Analyzed At",
	"Document Type",
	"Summary",
	"Critical Findings",
	"Generic Alternatives",
	"Procedure",
	"Billed Amount",
	"Expected Range (Private)",
	"Overcharged",
	"Bill Total",
	"Potential Overcharges",
	"Rejection Reason",
	"Appeal Advice",
	"Next Steps",
}

// Write renders history in format to w.
func Write(w io.Writer, format Format, history []domain.MedicalAnalysis) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, history)
	case FormatXLSX:
		return writeXLSX(w, history)
	default:
		return domain.ErrUnsupportedExport
	}
}

func writeCSV(w io.Writer, history []domain.MedicalAnalysis) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range history {
		if err := cw.Write(analysisToRow(&history[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// analysisToRow flattens one analysis; absent sections leave their
// columns empty.
func analysisToRow(a *domain.MedicalAnalysis) []string {
	row := make([]string, len(columns))

	row[0] = a.ID
	row[1] = formatTime(a.Timestamp)
	row[2] = string(a.DocumentType)
	row[3] = a.Summary
	row[14] = strings.Join(a.NextSteps, "; ")

	findings := make([]string, 0, len(a.CriticalFindings))
	for _, f := range a.CriticalFindings {
		findings = append(findings, f.Issue+": "+f.Action)
	}
	row[4] = strings.Join(findings, "; ")

	if alts, ok := a.GenericAlternatives.Get(); ok {
		parts := make([]string, 0, len(alts))
		for _, g := range alts {
			parts = append(parts, fmt.Sprintf("%s -> %s (%s vs %s)", g.BrandedName, g.GenericName, g.ApproxBrandedPrice, g.ApproxGenericPrice))
		}
		row[5] = strings.Join(parts, "; ")
	}

	if ci, ok := a.CostInsights.Get(); ok {
		row[6] = ci.ProcedureName
		row[7] = ci.BilledAmount.OrElse("")
		row[8] = ci.ExpectedRange.PrivateLow + " - " + ci.ExpectedRange.PrivateHigh
		row[9] = formatBool(ci.IsOvercharged)
	}

	if bill, ok := a.BillAnalysis.Get(); ok {
		row[10] = bill.TotalAmount
		items := make([]string, 0, len(bill.PotentialOvercharges))
		for _, o := range bill.PotentialOvercharges {
			items = append(items, o.Item+": "+o.Reason)
		}
		row[11] = strings.Join(items, "; ")
	}

	if ii, ok := a.InsuranceInsights.Get(); ok {
		row[12] = ii.RejectionReason.OrElse("")
		row[13] = ii.AppealAdvice.OrElse("")
	}

	return row
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters outside [A-Za-z0-9_-] with _,
// collapses runs of underscores and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the Content-Disposition filename for a user's
// export: {name}_history_{YYYY-MM-DD}.{ext}.
func BuildFilename(userName string, format Format, now time.Time) string {
	base := SanitizeFilename(userName)
	if base == "" {
		base = "medlens"
	}
	return fmt.Sprintf("%s_history_%s.%s", base, now.Format("2006-01-02"), format)
}
