package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
)

// Format selects how a report is written.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates an output format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or csv)", name)
	}
}

var csvHeader = []string{
	"status", "id", "created_at", "member_name", "policy_name", "provider_name",
	"provider_role", "amount", "description", "rejection_reason",
}

// WriteReport writes the result in the requested format.
func WriteReport(w io.Writer, format Format, result report.Result) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatCSV:
		return WriteCSV(w, result.Rows())
	default:
		if err := WriteTable(w, result.Rows()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "\n"+RenderSummary(result.Summary))
		return err
	}
}

// WriteTable writes the rows as an aligned text table.
func WriteTable(w io.Writer, rows []report.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No claims match the current filters."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		BoldStyle.Render("STATUS"),
		BoldStyle.Render("ID"),
		BoldStyle.Render("DATE"),
		BoldStyle.Render("MEMBER"),
		BoldStyle.Render("POLICY"),
		BoldStyle.Render("PROVIDER"),
		BoldStyle.Render("AMOUNT"),
	); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		c := row.Claim
		provider := FormatRole(c.ProviderRole)
		if c.ProviderName != "" {
			provider = Truncate(c.ProviderName, 24) + " (" + provider + ")"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			StatusStyle(row.Status).Render(string(row.Status)),
			c.ID,
			FormatDate(c.CreatedAt),
			orMissing(Truncate(c.MemberName, 28)),
			orMissing(Truncate(c.PolicyName, 24)),
			provider,
			FormatAmount(c),
		); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return tw.Flush()
}

// RenderSummary renders the counts and totals of the visible claims.
func RenderSummary(s report.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d claims\n", BoldStyle.Render("Total:"), s.TotalClaims)
	fmt.Fprintf(&b, "%s %d (%s)\n", SuccessStyle.Render("Approved:"), s.ApprovedClaims, FormatMoney(s.TotalApprovedAmount))
	fmt.Fprintf(&b, "%s %d (%s)\n", ErrorStyle.Render("Rejected:"), s.RejectedClaims, FormatMoney(s.TotalRejectedAmount))
	fmt.Fprintf(&b, "%s %d (%s)", WarningStyle.Render("Pending:"), s.PendingClaims, FormatMoney(s.TotalPendingAmount))
	return b.String()
}

type jsonReport struct {
	Approved []model.Claim `json:"approvedList"`
	Rejected []model.Claim `json:"rejectedList"`
	Pending  []model.Claim `json:"pendingList"`
	Summary  jsonSummary   `json:"summary"`
}

type jsonSummary struct {
	TotalClaims         int     `json:"totalClaims"`
	ApprovedClaims      int     `json:"approvedClaims"`
	RejectedClaims      int     `json:"rejectedClaims"`
	PendingClaims       int     `json:"pendingClaims"`
	TotalApprovedAmount float64 `json:"totalApprovedAmount"`
	TotalRejectedAmount float64 `json:"totalRejectedAmount"`
	TotalPendingAmount  float64 `json:"totalPendingAmount"`
}

// WriteJSON writes the partitions and summary using the backend's field names.
func WriteJSON(w io.Writer, result report.Result) error {
	s := result.Summary
	out := jsonReport{
		Approved: result.Approved,
		Rejected: result.Rejected,
		Pending:  result.Pending,
		Summary: jsonSummary{
			TotalClaims:         s.TotalClaims,
			ApprovedClaims:      s.ApprovedClaims,
			RejectedClaims:      s.RejectedClaims,
			PendingClaims:       s.PendingClaims,
			TotalApprovedAmount: s.TotalApprovedAmount,
			TotalRejectedAmount: s.TotalRejectedAmount,
			TotalPendingAmount:  s.TotalPendingAmount,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteCSV writes one line per visible claim. Absent amounts and dates are empty cells.
func WriteCSV(w io.Writer, rows []report.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		c := row.Claim
		amount := ""
		if c.HasAmount() {
			amount = strconv.FormatFloat(c.AmountValue(), 'f', 2, 64)
		}
		created := ""
		if c.CreatedAt != nil {
			created = c.CreatedAt.Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			string(row.Status), c.ID, created, c.MemberName, c.PolicyName, c.ProviderName,
			string(c.ProviderRole), amount, c.Description, c.RejectionReason,
		}); err != nil {
			return fmt.Errorf("failed to write claim %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
