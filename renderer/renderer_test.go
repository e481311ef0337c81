package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	stocks "github.com/4p00rv/kite-stock-analysis"
	"github.com/4p00rv/kite-stock-analysis/date"
)

func sampleResult() stocks.AnalysisResult {
	return stocks.AnalysisResult{
		Start:           date.New(2025, 1, 1),
		End:             date.New(2025, 8, 30),
		Days:            241,
		CurrentValue:    523450.75,
		XIRR:            0.142,
		TWR:             0.128,
		BenchmarkTWR:    0.095,
		Alpha:           0.021,
		Beta:            0.87,
		Sharpe:          1.34,
		Sortino:         1.92,
		MaxDrawdown:     0.083,
		MaxDrawdownDate: date.New(2025, 4, 7),
		VaR95:           -8123.5,
		VaR95Pct:        -1.55,
		Herfindahl:      0.12,
		Top5Weight:      0.61,
		RiskFree:        0.07,
		Warnings:        []string{"fewer than 30 daily observations: risk metrics are noisy"},
	}
}

func TestAnalysisMarkdown(t *testing.T) {
	allocations := []stocks.Allocation{
		{Name: "RELIANCE", Value: 120000, Weight: 0.23},
		{Name: "Others", Value: 40000, Weight: 0.08},
	}
	out := AnalysisMarkdown(sampleResult(), allocations)

	for _, want := range []string{
		"# Portfolio Analysis",
		"2025-01-01 to 2025-08-30",
		"current value ₹523,450.75",
		"| XIRR | +14.20% |",
		"| Beta | 0.87 |",
		"trough 2025-04-07",
		"| VaR 95% (1 day) | -₹8,123.50 (-1.55%) |",
		"| RELIANCE | ₹120,000.00 | +23.00% |",
		"## Warnings",
		"fewer than 30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "error") {
		t.Errorf("template error leaked into output:\n%s", out)
	}
}

func TestAnalysisMarkdownNoWarnings(t *testing.T) {
	res := sampleResult()
	res.Warnings = nil
	out := AnalysisMarkdown(res, nil)
	if strings.Contains(out, "## Warnings") {
		t.Error("warnings section rendered without warnings")
	}
	if strings.Contains(out, "## Allocation") {
		t.Error("allocation section rendered without allocations")
	}
}

// TestAnalysisMarkdownParses feeds the report through goldmark to catch
// broken markdown structure.
func TestAnalysisMarkdownParses(t *testing.T) {
	out := AnalysisMarkdown(sampleResult(), []stocks.Allocation{{Name: "TCS", Value: 1, Weight: 1}})
	source := []byte(out)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	if doc.ChildCount() < 3 {
		t.Errorf("parsed report has %d blocks, want at least heading, intro and tables", doc.ChildCount())
	}
}
