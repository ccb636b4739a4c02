package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestReductionFinalize(t *testing.T) {
	s := Statistic{}
	for _, v := range []float64{2, 4, 9} {
		s.Observe(v)
	}
	if got := ReduceSum.Finalize(s); got != 15 {
		t.Errorf("sum: got %v, want 15", got)
	}
	if got := ReduceMean.Finalize(s); got != 5 {
		t.Errorf("mean: got %v, want 5", got)
	}
}

func TestStatisticMergeIsOrderIndependent(t *testing.T) {
	a := Statistic{Sum: 3, Count: 1}
	b := Statistic{Sum: 5, Count: 2}
	c := Statistic{Sum: 7, Count: 4}

	left := a.Merge(b).Merge(c)
	right := c.Merge(a.Merge(b))
	if left != right {
		t.Fatalf("merge order changed result: %+v vs %+v", left, right)
	}
	if left.Sum != 15 || left.Count != 7 {
		t.Errorf("unexpected merge result: %+v", left)
	}
}

func TestAggregatorMergeMatchesSingle(t *testing.T) {
	values := map[string][]float64{
		"Loop":   {1, 2, 3, 4},
		"Uptown": {10, 20},
		"Austin": {7},
	}

	single := NewAggregator()
	shardA, shardB := NewAggregator(), NewAggregator()
	i := 0
	for key, vs := range values {
		for _, v := range vs {
			single.Add(key, v)
			if i%2 == 0 {
				shardA.Add(key, v)
			} else {
				shardB.Add(key, v)
			}
			i++
		}
	}

	merged := NewAggregator()
	merged.Merge(shardB)
	merged.Merge(shardA)

	for _, r := range []Reduction{ReduceSum, ReduceMean} {
		want := single.Entries(r)
		got := merged.Entries(r)
		if len(got) != len(want) {
			t.Fatalf("%s: got %d entries, want %d", r, len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("%s: entry %d: got %+v, want %+v", r, j, got[j], want[j])
			}
		}
	}
}

func TestEntriesSortedByKeyBytes(t *testing.T) {
	agg := NewAggregator()
	for _, k := range []string{"West Town", "Albany Park", "Uptown", "austin", "Near North Side"} {
		agg.Add(k, 1)
	}

	entries := agg.Entries(ReduceSum)
	want := []string{"Albany Park", "Near North Side", "Uptown", "West Town", "austin"}
	for i, e := range entries {
		if e.Key != want[i] {
			t.Errorf("position %d: got %q, want %q", i, e.Key, want[i])
		}
	}
}

func TestAggregatePassSkipsHeaderAndLogsInvalid(t *testing.T) {
	logs := captureLog(t)
	report, _ := FindReport(DefaultReports(), "building_type")

	bad := buildingRow("Loop", "Commercial", "Commercial", "abc", "1", "1")
	input := strings.Join([]string{
		buildingRow("X", "Header Type", "", "999", "", ""), // header, never counted
		buildingRow("Loop", "Commercial", "Commercial", "100", "1", "1"),
		bad,
		buildingRow("Loop", "Residential", "Multi 7+", "50", "1", "1"),
		buildingRow("Loop", "Commercial", "Commercial", "25", "1", "1"),
		"",
	}, "\n")

	agg, stats, err := AggregatePass(context.Background(), strings.NewReader(input), report, PassOptions{Workers: 1})
	if err != nil {
		t.Fatalf("AggregatePass failed: %v", err)
	}

	entries := agg.Entries(report.Reduction)
	if len(entries) != 2 {
		t.Fatalf("expected 2 keys, got %+v", entries)
	}
	if entries[0].Key != "Commercial" || entries[0].Value != 125 {
		t.Errorf("unexpected Commercial entry: %+v", entries[0])
	}
	if entries[1].Key != "Residential" || entries[1].Value != 50 {
		t.Errorf("unexpected Residential entry: %+v", entries[1])
	}

	if stats.RowsRead != 4 || stats.RowsAccepted != 3 || stats.RowsInvalid != 1 || stats.RowsSkipped != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if strings.Count(logs.String(), "Skipping invalid row: ") != 1 {
		t.Errorf("expected one rejection log line, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), bad) {
		t.Errorf("rejection log should include the raw line, got %q", logs.String())
	}
}

func TestAggregatePassShardingIndependent(t *testing.T) {
	report, _ := FindReport(DefaultReports(), "therms_per_capita")

	lines := []string{headerRow()}
	communities := []string{"Loop", "Uptown", "Austin", "Hegewisch", "Edgewater"}
	for i := 0; i < 3000; i++ {
		community := communities[i%len(communities)]
		lines = append(lines, buildingRow(community, "Residential", "Multi 7+", "1", fmt.Sprint(i%11*4), "4"))
	}
	input := strings.Join(lines, "\n")

	var baseline []string
	for _, workers := range []int{1, 2, 7} {
		agg, stats, err := AggregatePass(context.Background(), strings.NewReader(input), report,
			PassOptions{Workers: workers, ChannelBufferSize: 2})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if stats.RowsRead != 3000 || stats.WorkerCount != workers {
			t.Errorf("workers=%d: unexpected stats %+v", workers, stats)
		}

		var got []string
		for _, e := range agg.Entries(report.Reduction) {
			got = append(got, fmt.Sprintf("%s=%v", e.Key, e.Value))
		}
		if baseline == nil {
			baseline = got
			continue
		}
		if strings.Join(got, ";") != strings.Join(baseline, ";") {
			t.Errorf("workers=%d: got %v, want %v", workers, got, baseline)
		}
	}
}

func TestAggregatePassCanceled(t *testing.T) {
	report, _ := FindReport(DefaultReports(), "building_type")
	lines := []string{headerRow()}
	for i := 0; i < 5000; i++ {
		lines = append(lines, buildingRow("Loop", "Commercial", "", "1", "", ""))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := AggregatePass(ctx, strings.NewReader(strings.Join(lines, "\n")), report, PassOptions{Workers: 2}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
