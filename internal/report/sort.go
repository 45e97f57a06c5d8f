package report

import (
	"cmp"
	"slices"

	"github.com/Veraticus/claimdesk/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortClaims returns a copy of claims ordered by key. The sort is stable: claims
// that compare equal keep their relative input order. Unknown keys fall back to
// SortDateDesc.
func SortClaims(claims []model.Claim, key SortKey) []model.Claim {
	sorted := slices.Clone(claims)
	if sorted == nil {
		sorted = []model.Claim{}
	}
	slices.SortStableFunc(sorted, comparator(key))
	return sorted
}

func comparator(key SortKey) func(a, b model.Claim) int {
	switch key {
	case SortDateAsc:
		return func(a, b model.Claim) int {
			return a.CreatedTime().Compare(b.CreatedTime())
		}
	case SortAmountDesc:
		return func(a, b model.Claim) int {
			return cmp.Compare(b.AmountValue(), a.AmountValue())
		}
	case SortAmountAsc:
		return func(a, b model.Claim) int {
			return cmp.Compare(a.AmountValue(), b.AmountValue())
		}
	case SortMemberNameAsc:
		// A collator keeps internal buffers, so each sort gets its own.
		collator := collate.New(language.English, collate.IgnoreCase)
		return func(a, b model.Claim) int {
			return collator.CompareString(a.MemberName, b.MemberName)
		}
	default:
		return func(a, b model.Claim) int {
			return b.CreatedTime().Compare(a.CreatedTime())
		}
	}
}
