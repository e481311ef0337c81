// Package renderer turns analysis results into markdown reports for the
// terminal.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	stocks "github.com/4p00rv/kite-stock-analysis"
)

//go:embed templates/*.md
var templates embed.FS

// analysisView is the pre-formatted data handed to the analysis template.
type analysisView struct {
	Start        string
	End          string
	Days         int
	CurrentValue string
	Metrics      []metricRow
	Allocations  []allocationRow
	Warnings     []string
}

type metricRow struct {
	Name  string
	Value string
}

type allocationRow struct {
	Name   string
	Value  string
	Weight string
}

// AnalysisMarkdown renders the full analysis report.
func AnalysisMarkdown(res stocks.AnalysisResult, allocations []stocks.Allocation) string {
	view := analysisView{
		Start:        res.Start.String(),
		End:          res.End.String(),
		Days:         res.Days,
		CurrentValue: inr(res.CurrentValue),
		Warnings:     res.Warnings,
	}

	view.Metrics = []metricRow{
		{"XIRR", percent(res.XIRR)},
		{"TWR (annualized)", percent(res.TWR)},
		{"Benchmark TWR (annualized)", percent(res.BenchmarkTWR)},
		{"Alpha", percent(res.Alpha)},
		{"Beta", fmt.Sprintf("%.2f", res.Beta)},
		{"Sharpe", fmt.Sprintf("%.2f", res.Sharpe)},
		{"Sortino", fmt.Sprintf("%.2f", res.Sortino)},
		{"Max drawdown", fmt.Sprintf("%s (trough %s)", percent(-res.MaxDrawdown), res.MaxDrawdownDate)},
		{"VaR 95% (1 day)", fmt.Sprintf("%s (%.2f%%)", inr(res.VaR95), res.VaR95Pct)},
		{"Herfindahl index", fmt.Sprintf("%.4f", res.Herfindahl)},
		{"Top 5 weight", percent(res.Top5Weight)},
		{"Risk-free rate", percent(res.RiskFree)},
	}

	for _, a := range allocations {
		view.Allocations = append(view.Allocations, allocationRow{
			Name:   a.Name,
			Value:  inr(a.Value),
			Weight: percent(a.Weight),
		})
	}

	partials := map[string]string{
		"analysis_metrics":    "templates/analysis_metrics.md",
		"analysis_allocation": "templates/analysis_allocation.md",
		"analysis_warnings":   "templates/analysis_warnings.md",
	}
	return renderTemplate("analysis", "templates/analysis.md", partials, view)
}

func percent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

func inr(v float64) string {
	return stocks.INR(decimal.NewFromFloat(v))
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
