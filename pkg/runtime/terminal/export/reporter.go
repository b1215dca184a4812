package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/template"

	"github.com/ft-tools/forest-atlas/pkg/analysis"
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

type TableConfig struct {
	BarWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		BarWidth: 40,
	}
}

// Reporter renders analysis results as text tables.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type table struct {
	Title  string
	Widths []int
	Header []string
	Rows   [][]string
}

const tableTmpl = `
{{.Title}}
{{rule .Widths}}
{{row .Widths .Header}}
{{rule .Widths}}
{{range .Rows}}{{row $.Widths .}}
{{end}}{{rule .Widths}}
`

func (c *Reporter) render(t table) error {
	funcMap := template.FuncMap{
		"row": func(widths []int, cells []string) string {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
			}
			return "|" + strings.Join(parts, "|") + "|"
		},
		"rule": func(widths []int) string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
	}

	tmpl, err := template.New("table").Funcs(funcMap).Parse(tableTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(c.writer, t)
}

// StandSummary renders the stand-level metric table.
func (c *Reporter) StandSummary(m *analysis.StandMetrics) error {
	rows := [][]string{
		{"Trees per Acre", fmt.Sprintf("%.1f", m.TotalTPA), "TPA"},
		{"Basal Area", fmt.Sprintf("%.1f", m.TotalBasalArea), "sq ft/acre"},
		{"Volume (cubic ft)", fmt.Sprintf("%.1f", m.TotalVolumeCuft), "cu ft/acre"},
		{"Volume (board ft)", fmt.Sprintf("%.0f", m.TotalVolumeBdft), "bd ft/acre"},
		{"QMD", fmt.Sprintf("%.1f", m.QuadraticMeanDiameter), "inches"},
	}
	if m.MeanHeight != nil {
		rows = append(rows, []string{"Mean Height", fmt.Sprintf("%.1f", *m.MeanHeight), "feet"})
	}
	rows = append(rows, []string{"Number of Species", fmt.Sprintf("%d", m.NumSpecies), ""})

	return c.render(table{
		Title:  "Stand Summary",
		Widths: []int{20, 12, 12},
		Header: []string{"Metric", "Value", "Unit"},
		Rows:   rows,
	})
}

// SpeciesComposition renders the per-species share table.
func (c *Reporter) SpeciesComposition(m *analysis.StandMetrics) error {
	var rows [][]string
	for _, sp := range m.SpeciesComposition {
		rows = append(rows, []string{
			sp.Species.CommonName,
			sp.Species.Code,
			fmt.Sprintf("%.1f", sp.TPA),
			fmt.Sprintf("%.1f%%", sp.PercentTPA),
			fmt.Sprintf("%.1f", sp.BasalArea),
			fmt.Sprintf("%.1f%%", sp.PercentBasalArea),
			fmt.Sprintf("%.1f\"", sp.MeanDBH),
		})
	}

	return c.render(table{
		Title:  "Species Composition",
		Widths: []int{22, 6, 8, 8, 8, 8, 10},
		Header: []string{"Species", "Code", "TPA", "% TPA", "BA/ac", "% BA", "Mean DBH"},
		Rows:   rows,
	})
}

// SamplingStatistics renders per-metric confidence intervals.
func (c *Reporter) SamplingStatistics(s *analysis.SamplingStatistics) error {
	_, err := fmt.Fprintf(c.writer, "\nConfidence Level: %.0f%% | Sample Size: %d plots\n",
		s.TPA.ConfidenceLevel*100.0, s.TPA.SampleSize)
	if err != nil {
		return err
	}

	metrics := []struct {
		name string
		ci   analysis.ConfidenceInterval
	}{
		{"TPA", s.TPA},
		{"Basal Area (sq ft/ac)", s.BasalArea},
		{"Volume (cu ft/ac)", s.VolumeCuft},
		{"Volume (bd ft/ac)", s.VolumeBdft},
	}

	var rows [][]string
	for _, m := range metrics {
		rows = append(rows, []string{
			m.name,
			fmt.Sprintf("%.1f", m.ci.Mean),
			fmt.Sprintf("%.2f", m.ci.StdError),
			fmt.Sprintf("%.1f", m.ci.Lower),
			fmt.Sprintf("%.1f", m.ci.Upper),
			fmt.Sprintf("%.1f%%", m.ci.SamplingErrorPercent),
		})
	}

	return c.render(table{
		Title:  "Sampling Statistics",
		Widths: []int{22, 10, 10, 10, 10, 14},
		Header: []string{"Metric", "Mean", "Std Error", "Lower CI", "Upper CI", "Samp. Error %"},
		Rows:   rows,
	})
}

// GrowthProjections renders the year-by-year projection table.
func (c *Reporter) GrowthProjections(projections []analysis.GrowthProjection) error {
	var rows [][]string
	for _, p := range projections {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("%.1f", p.TPA),
			fmt.Sprintf("%.1f", p.BasalArea),
			fmt.Sprintf("%.1f", p.VolumeCuft),
			fmt.Sprintf("%.0f", p.VolumeBdft),
		})
	}

	return c.render(table{
		Title:  "Growth Projections",
		Widths: []int{6, 10, 10, 14, 14},
		Header: []string{"Year", "TPA", "BA/ac", "Vol (cuft/ac)", "Vol (bdft/ac)"},
		Rows:   rows,
	})
}

const histogramTmpl = `
Diameter Distribution
{{if not .Classes}}  No data available.
{{else}}  {{printf "%10s  %8s  %8s" "DBH Class" "TPA" "BA/ac"}}  Distribution
  {{dashes}}
{{range .Classes}}  {{printf "%4.0f-%-4.0f\"" .Lower .Upper}}  {{printf "%8.1f" .TPA}}  {{printf "%8.1f" .BasalArea}}  {{bar .TPA}}
{{end}}{{end}}`

// DiameterHistogram renders a text histogram of the distribution,
// with bars scaled to the largest class.
func (c *Reporter) DiameterHistogram(d *analysis.DiameterDistribution) error {
	var maxTPA float64
	for _, class := range d.Classes {
		maxTPA = math.Max(maxTPA, class.TPA)
	}

	funcMap := template.FuncMap{
		"bar": func(tpa float64) string {
			if maxTPA <= 0 {
				return ""
			}
			n := int(math.Round(tpa / maxTPA * float64(c.config.BarWidth)))
			return strings.Repeat("█", n)
		},
		"dashes": func() string {
			return strings.Repeat("-", 70)
		},
	}

	tmpl, err := template.New("histogram").Funcs(funcMap).Parse(histogramTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(c.writer, d)
}

const summaryTmpl = `
Inventory: {{.Name}}
Plots: {{.NumPlots}}
Total Trees: {{.NumTrees}}
Species: {{.NumSpecies}}
Mean TPA: {{printf "%.1f" .MeanTPA}}
Mean BA: {{printf "%.1f" .MeanBasalArea}} sq ft/ac
Mean Volume: {{printf "%.1f" .MeanVolumeCuft}} cu ft/ac
Mean Volume: {{printf "%.0f" .MeanVolumeBdft}} bd ft/ac
`

type summaryData struct {
	Name           string
	NumPlots       int
	NumTrees       int
	NumSpecies     int
	MeanTPA        float64
	MeanBasalArea  float64
	MeanVolumeCuft float64
	MeanVolumeBdft float64
}

// InventorySummary renders the quick-look inventory overview.
func (c *Reporter) InventorySummary(inv *domain.ForestInventory, eq domain.VolumeEquation) error {
	tmpl, err := template.New("summary").Parse(summaryTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(c.writer, summaryData{
		Name:           inv.Name,
		NumPlots:       inv.NumPlots(),
		NumTrees:       inv.NumTrees(),
		NumSpecies:     len(inv.SpeciesList()),
		MeanTPA:        inv.MeanTPA(),
		MeanBasalArea:  inv.MeanBasalArea(),
		MeanVolumeCuft: inv.MeanVolumeCuft(eq),
		MeanVolumeBdft: inv.MeanVolumeBdft(eq),
	})
}
