package sheets

import (
	"context"
	"fmt"

	sheetsapi "google.golang.org/api/sheets/v4"
)

// Tab colors, matching the spreadsheet's established look.
var (
	headerBackground = &sheetsapi.Color{Red: 0x3c / 255.0, Green: 0x46 / 255.0, Blue: 0x59 / 255.0}
	headerForeground = &sheetsapi.Color{Red: 1, Green: 1, Blue: 1}
	bandBackground   = &sheetsapi.Color{Red: 0xed / 255.0, Green: 0xf0 / 255.0, Blue: 0xf4 / 255.0}
	whiteBackground  = &sheetsapi.Color{Red: 1, Green: 1, Blue: 1}
)

// formatHeader bolds the header row, inverts its colors and freezes it.
func (c *Client) formatHeader(ctx context.Context, sheetID int64, cols int) error {
	return c.svc.BatchUpdate(ctx,
		&sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(cols),
				},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{
						BackgroundColor:     headerBackground,
						HorizontalAlignment: "CENTER",
						TextFormat: &sheetsapi.TextFormat{
							Bold:            true,
							ForegroundColor: headerForeground,
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
			},
		},
		&sheetsapi.Request{
			UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
				Properties: &sheetsapi.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheetsapi.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	)
}

// decorateDateTab applies the header format and alternates row backgrounds
// per date group, so consecutive capture dates are easy to tell apart.
func (c *Client) decorateDateTab(ctx context.Context, title string, sheetID int64, cols int) error {
	if err := c.formatHeader(ctx, sheetID, cols); err != nil {
		return err
	}

	col, err := c.svc.Values(ctx, rng(title, "A:A"))
	if err != nil {
		return err
	}

	var reqs []*sheetsapi.Request
	band := false
	groupStart := 1
	flush := func(end int) {
		bg := whiteBackground
		if band {
			bg = bandBackground
		}
		reqs = append(reqs, &sheetsapi.Request{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(groupStart),
					EndRowIndex:      int64(end),
					StartColumnIndex: 0,
					EndColumnIndex:   int64(cols),
				},
				Cell: &sheetsapi.CellData{
					UserEnteredFormat: &sheetsapi.CellFormat{BackgroundColor: bg},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		})
	}
	for i := 2; i < len(col); i++ {
		if len(col[i]) == 0 || len(col[i-1]) == 0 || col[i][0] == col[i-1][0] {
			continue
		}
		flush(i)
		band = !band
		groupStart = i
	}
	if len(col) > 1 {
		flush(len(col))
	}
	return c.svc.BatchUpdate(ctx, reqs...)
}

// chartSpecs describes the charts maintained on the analysis tabs, keyed by
// chart title.
type chartSpec struct {
	title    string
	dataTab  string
	chart    string // BASIC chart type or "PIE"
	domain   int64  // domain column index on the data tab
	series   []int64
	targetAt string // tab hosting the chart
}

var chartSpecs = []chartSpec{
	{title: "Portfolio vs Benchmark", dataTab: DailyValuesTab, chart: "LINE", domain: 0, series: []int64{1, 2}, targetAt: DailyValuesTab},
	{title: "Drawdown", dataTab: DailyValuesTab, chart: "AREA", domain: 0, series: []int64{3}, targetAt: DailyValuesTab},
	{title: "Allocation", dataTab: AllocationTab, chart: "PIE", domain: 0, series: []int64{2}, targetAt: AllocationTab},
}

// EnsureCharts creates the analysis charts and the Holdings date slicer when
// they do not exist yet. Existing charts are left alone: their data ranges
// point at whole columns and follow the rewritten tabs.
func (c *Client) EnsureCharts(ctx context.Context) error {
	ss, err := c.svc.Spreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("reading spreadsheet: %w", err)
	}

	ids := map[string]int64{}
	existing := map[string]bool{}
	hasSlicer := map[string]bool{}
	for _, s := range ss.Sheets {
		ids[s.Properties.Title] = s.Properties.SheetId
		for _, ch := range s.Charts {
			if ch.Spec != nil {
				existing[ch.Spec.Title] = true
			}
		}
		if len(s.Slicers) > 0 {
			hasSlicer[s.Properties.Title] = true
		}
	}

	var reqs []*sheetsapi.Request
	for _, spec := range chartSpecs {
		dataID, ok := ids[spec.dataTab]
		if !ok || existing[spec.title] {
			continue
		}
		reqs = append(reqs, addChartRequest(spec, dataID, ids[spec.targetAt]))
	}
	if holdingsID, ok := ids[HoldingsTab]; ok && !hasSlicer[HoldingsTab] {
		reqs = append(reqs, dateSlicerRequest(holdingsID))
	}
	return c.svc.BatchUpdate(ctx, reqs...)
}

func addChartRequest(spec chartSpec, dataID, targetID int64) *sheetsapi.Request {
	col := func(i int64) *sheetsapi.ChartData {
		return &sheetsapi.ChartData{
			SourceRange: &sheetsapi.ChartSourceRange{
				Sources: []*sheetsapi.GridRange{{
					SheetId:          dataID,
					StartRowIndex:    0,
					StartColumnIndex: i,
					EndColumnIndex:   i + 1,
				}},
			},
		}
	}

	chart := &sheetsapi.ChartSpec{Title: spec.title}
	if spec.chart == "PIE" {
		chart.PieChart = &sheetsapi.PieChartSpec{
			Domain:  col(spec.domain),
			Series:  col(spec.series[0]),
			PieHole: 0.4,
		}
	} else {
		basic := &sheetsapi.BasicChartSpec{
			ChartType:      spec.chart,
			HeaderCount:    1,
			LegendPosition: "BOTTOM_LEGEND",
			Domains:        []*sheetsapi.BasicChartDomain{{Domain: col(spec.domain)}},
		}
		for _, s := range spec.series {
			basic.Series = append(basic.Series, &sheetsapi.BasicChartSeries{
				Series:     col(s),
				TargetAxis: "LEFT_AXIS",
			})
		}
		chart.BasicChart = basic
	}

	return &sheetsapi.Request{
		AddChart: &sheetsapi.AddChartRequest{
			Chart: &sheetsapi.EmbeddedChart{
				Spec: chart,
				Position: &sheetsapi.EmbeddedObjectPosition{
					OverlayPosition: &sheetsapi.OverlayPosition{
						AnchorCell:   &sheetsapi.GridCoordinate{SheetId: targetID, ColumnIndex: 6},
						WidthPixels:  720,
						HeightPixels: 400,
					},
				},
			},
		},
	}
}

// dateSlicerRequest filters the Holdings tab by its date column.
func dateSlicerRequest(sheetID int64) *sheetsapi.Request {
	return &sheetsapi.Request{
		AddSlicer: &sheetsapi.AddSlicerRequest{
			Slicer: &sheetsapi.Slicer{
				Spec: &sheetsapi.SlicerSpec{
					ColumnIndex:        0,
					ApplyToPivotTables: false,
					DataRange: &sheetsapi.GridRange{
						SheetId:          sheetID,
						StartRowIndex:    0,
						StartColumnIndex: 0,
						EndColumnIndex:   11,
					},
				},
				Position: &sheetsapi.EmbeddedObjectPosition{
					OverlayPosition: &sheetsapi.OverlayPosition{
						AnchorCell:  &sheetsapi.GridCoordinate{SheetId: sheetID, ColumnIndex: 12},
						WidthPixels: 220,
					},
				},
			},
		},
	}
}
