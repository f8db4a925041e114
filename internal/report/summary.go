// Package report prints the human-readable end-of-run summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/talgya/tokensim/internal/engine"
)

// TokenSummary is the final state of one token.
type TokenSummary struct {
	Name   string
	Price  float32
	Supply float32
	Curve  string
}

// AffiliateSummary is the final state of one affiliate.
type AffiliateSummary struct {
	ID             int
	Earned         float64
	CommissionRate float64
	Balance        float64
	Wallet         map[string]float64
}

// Summarize reduces a result to the last element of every series. Entities
// with empty series report zero values.
func Summarize(res *engine.Result) ([]TokenSummary, []AffiliateSummary) {
	tokens := make([]TokenSummary, 0, len(res.Tokens))
	for _, h := range res.Tokens {
		ts := TokenSummary{Name: h.Name}
		if n := h.Len(); n > 0 {
			ts.Price = h.Price[n-1]
			ts.Supply = h.Supply[n-1]
			ts.Curve = h.Curve[n-1]
		}
		tokens = append(tokens, ts)
	}

	affs := make([]AffiliateSummary, 0, len(res.Affiliates))
	for _, h := range res.Affiliates {
		as := AffiliateSummary{ID: h.ID, Wallet: map[string]float64{}}
		if n := h.Len(); n > 0 {
			as.Earned = h.Earned[n-1]
			as.CommissionRate = h.CommissionRate[n-1]
			as.Balance = h.Balance[n-1]
			as.Wallet = h.Wallet[n-1]
		}
		affs = append(affs, as)
	}
	return tokens, affs
}

// Print writes the token and affiliate summaries followed by run statistics.
func Print(w io.Writer, res *engine.Result) error {
	tokens, affs := Summarize(res)
	var b strings.Builder

	b.WriteString("\n--- Token Summary ---\n")
	for _, t := range tokens {
		fmt.Fprintf(&b, "\nToken: %s\n", t.Name)
		fmt.Fprintf(&b, "  Final Price: %s\n", fixed32(t.Price, 2))
		fmt.Fprintf(&b, "  Final Supply: %s\n", fixed32(t.Supply, 2))
		fmt.Fprintf(&b, "  Final Bonding Curve: %s\n", t.Curve)
	}

	b.WriteString("\n--- Affiliate Summary ---\n")
	for _, a := range affs {
		fmt.Fprintf(&b, "\nAffiliate: %d\n", a.ID)
		fmt.Fprintf(&b, "  Final Base Currency: %s\n", fixed(a.Balance, 2))
		fmt.Fprintf(&b, "  Final Commission Rate: %s\n", fixed(a.CommissionRate, 4))
		fmt.Fprintf(&b, "  Total Earned: %s\n", fixed(a.Earned, 2))
		if len(a.Wallet) > 0 {
			fmt.Fprintf(&b, "  Final Wallet: %s\n", formatWallet(a.Wallet))
		}
	}

	s := res.Stats
	b.WriteString("\n--- Run Statistics ---\n")
	fmt.Fprintf(&b, "  Seed: %d\n", res.Seed)
	fmt.Fprintf(&b, "  Steps: %s\n", humanize.Comma(int64(res.Steps)))
	fmt.Fprintf(&b, "  Trades: %s (buys %s, sells %s, liquidations %s)\n",
		humanize.Comma(int64(s.Trades())),
		humanize.Comma(int64(s.Buys)),
		humanize.Comma(int64(s.Sells)),
		humanize.Comma(int64(s.Liquidations)),
	)
	fmt.Fprintf(&b, "  Volume: %s\n", humanize.CommafWithDigits(s.Volume, 2))
	fmt.Fprintf(&b, "  Curve Changes: %d (parameter resamples %d)\n", s.CurveChanges, s.ParamChanges)

	_, err := io.WriteString(w, b.String())
	return err
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func fixed32(v float32, places int32) string {
	return decimal.NewFromFloat32(v).StringFixed(places)
}

func formatWallet(wallet map[string]float64) string {
	names := make([]string, 0, len(wallet))
	for name := range wallet {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, fixed(wallet[name], 2)))
	}
	return strings.Join(parts, ", ")
}
