package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/report"
)

// parseAmountRange reads "min-max". Either side may be left out: "-500" means
// up to 500 and "100-" means from 100. An empty answer restores the full range.
func parseAmountRange(value string, ceiling float64) (float64, float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, "$", ""))
	if value == "" {
		return 0, ceiling, nil
	}

	lo, hi, found := strings.Cut(value, "-")
	if !found {
		return 0, 0, fmt.Errorf("%w: amount range %q must look like 100-500", common.ErrInvalidCriteria, value)
	}

	minAmount, err := parseAmount(lo, 0)
	if err != nil {
		return 0, 0, err
	}
	maxAmount, err := parseAmount(hi, ceiling)
	if err != nil {
		return 0, 0, err
	}
	return minAmount, maxAmount, nil
}

func parseAmount(value string, fallback float64) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return fallback, nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q is not a number", common.ErrInvalidCriteria, value)
	}
	return amount, nil
}

// parseDateRange reads "from..to" with YYYY-MM-DD dates. Either side may be
// left out; an empty answer clears both bounds.
func parseDateRange(value string) (*time.Time, *time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil, nil
	}

	fromText, toText, found := strings.Cut(value, "..")
	if !found {
		fromText = value
	}

	from, err := report.ParseDate(fromText)
	if err != nil {
		return nil, nil, err
	}
	to, err := report.ParseDate(toText)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// formatAmountRange renders the current range the way parseAmountRange reads it.
func formatAmountRange(c report.Criteria) string {
	return strconv.FormatFloat(c.AmountMin, 'f', -1, 64) + "-" + strconv.FormatFloat(c.AmountMax, 'f', -1, 64)
}

// formatDateRange renders the current bounds the way parseDateRange reads them.
func formatDateRange(c report.Criteria) string {
	if c.DateFrom == nil && c.DateTo == nil {
		return ""
	}
	var from, to string
	if c.DateFrom != nil {
		from = c.DateFrom.Format("2006-01-02")
	}
	if c.DateTo != nil {
		to = c.DateTo.Format("2006-01-02")
	}
	return from + ".." + to
}

// next returns the element after current, wrapping around. An unknown current
// value starts the cycle over.
func next[T comparable](values []T, current T) T {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
