package pipeline

import (
	"energy-pipeline/internal/model"
	"fmt"
)

// Report binds an extractor to a reduction and the chart drawn from its
// result. Name doubles as the report's output directory.
type Report struct {
	Name      string
	Label     string
	Extract   Extractor
	Reduction Reduction
	Chart     model.ChartSpec
}

// DefaultReports returns the three energy reports in run order.
//
// building_type is labelled an average but sums kWh per building type;
// the sum is what gets written.
func DefaultReports() []Report {
	return []Report{
		{
			Name:      "building_type",
			Label:     "Avg Electricity by Building Type",
			Extract:   ExtractBuildingKWh,
			Reduction: ReduceSum,
			Chart: model.ChartSpec{
				Title:     "Average Electricity Consumption by Building Type",
				XLabel:    "Building Type",
				YLabel:    "Avg KWH",
				FileName:  "JOB1_CHART.png",
				LabelSkip: 0,
			},
		},
		{
			Name:      "multi_unit_therms",
			Label:     "Multi-Unit Therms by Community",
			Extract:   ExtractMultiUnitTherms,
			Reduction: ReduceSum,
			Chart: model.ChartSpec{
				Title:     "Total Therm Usage by Community (Multi-Unit Buildings)",
				XLabel:    "Community",
				YLabel:    "Therms per Person",
				FileName:  "JOB2_CHART.png",
				LabelSkip: 5,
			},
		},
		{
			Name:      "therms_per_capita",
			Label:     "Therms per Capita",
			Extract:   ExtractThermsPerCapita,
			Reduction: ReduceMean,
			Chart: model.ChartSpec{
				Title:     "Therms Usage per Capita by Community",
				XLabel:    "Community",
				YLabel:    "Therms per Person",
				FileName:  "JOB3_CHART.png",
				LabelSkip: 5,
			},
		},
	}
}

// SelectReports returns the named reports in run order; no names selects
// all of them.
func SelectReports(names []string) ([]Report, error) {
	all := DefaultReports()
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := FindReport(all, name); !ok {
			return nil, fmt.Errorf("unknown report %q", name)
		}
		wanted[name] = true
	}
	var selected []Report
	for _, r := range all {
		if wanted[r.Name] {
			selected = append(selected, r)
		}
	}
	return selected, nil
}

// FindReport looks a report up by name
func FindReport(reports []Report, name string) (Report, bool) {
	for _, r := range reports {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}
