package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testColumns = 66

// csvRow builds an input line with the given columns set and the rest empty
func csvRow(fields map[int]string) string {
	cols := make([]string, testColumns)
	for i, v := range fields {
		cols[i] = v
	}
	return strings.Join(cols, ",")
}

// buildingRow is a row usable by every report
func buildingRow(community, buildingType, subtype, kwh, therms, population string) string {
	return csvRow(map[int]string{
		colCommunityArea:   community,
		colBuildingType:    buildingType,
		colBuildingSubtype: subtype,
		colTotalKWh:        kwh,
		colTotalTherms:     therms,
		colTotalPopulation: population,
	})
}

func headerRow() string {
	return csvRow(map[int]string{
		colCommunityArea:   "COMMUNITY AREA NAME",
		colBuildingType:    "BUILDING TYPE",
		colBuildingSubtype: "BUILDING_SUBTYPE",
		colTotalKWh:        "TOTAL KWH",
		colTotalTherms:     "TOTAL THERMS",
		colTotalPopulation: "TOTAL POPULATION",
	})
}

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "energy.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}
