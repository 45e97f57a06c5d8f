package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing is shown in place of an absent value.
const Missing = "—"

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with two decimals and thousands separators.
// Rounding happens here and nowhere else.
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-" + FormatMoney(math.Abs(amount))
	}
	return moneyPrinter.Sprintf("$%.2f", amount)
}

// FormatAmount renders a claim amount, or Missing when the backend sent none.
func FormatAmount(claim model.Claim) string {
	if !claim.HasAmount() {
		return Missing
	}
	return FormatMoney(claim.AmountValue())
}

// FormatDate renders a submission date in local time, or Missing.
func FormatDate(t *time.Time) string {
	if t == nil {
		return Missing
	}
	return t.Local().Format("2006-01-02")
}

// FormatRole renders a provider role for display, collapsing unknown roles.
func FormatRole(role model.ProviderRole) string {
	words := strings.Split(strings.ToLower(string(role.Category())), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// DescribeCriteria lists the criteria that differ from defaults, one short
// phrase each, status scope included.
func DescribeCriteria(c, defaults report.Criteria) []string {
	var parts []string
	if c.StatusScope != defaults.StatusScope {
		parts = append(parts, fmt.Sprintf("status: %s", c.StatusScope))
	}
	if c.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("search: %q", c.SearchQuery))
	}
	if c.ProviderFilter != defaults.ProviderFilter {
		parts = append(parts, fmt.Sprintf("provider: %s", FormatRole(model.ProviderRole(c.ProviderFilter))))
	}
	if c.PolicyFilter != defaults.PolicyFilter {
		parts = append(parts, fmt.Sprintf("policy: %s", c.PolicyFilter))
	}
	if c.AmountMin > defaults.AmountMin || c.AmountMax < defaults.AmountMax {
		parts = append(parts, fmt.Sprintf("amount: %s to %s", FormatMoney(c.AmountMin), FormatMoney(c.AmountMax)))
	}
	if c.DateFrom != nil || c.DateTo != nil {
		from, to := "any", "any"
		if c.DateFrom != nil {
			from = c.DateFrom.Format("2006-01-02")
		}
		if c.DateTo != nil {
			to = c.DateTo.Format("2006-01-02")
		}
		parts = append(parts, fmt.Sprintf("dates: %s to %s", from, to))
	}
	if c.SortKey != defaults.SortKey {
		parts = append(parts, fmt.Sprintf("sort: %s", c.SortKey))
	}
	return parts
}
