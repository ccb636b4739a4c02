package model

// Record is one input line split into fields. Fields are addressed by
// position only; there is no header-based lookup.
type Record []string

// Entry is a single key/value line of a report's output.
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ChartSpec defines how a report's result is drawn
type ChartSpec struct {
	Title     string `json:"title"`
	XLabel    string `json:"x_label"`
	YLabel    string `json:"y_label"`
	FileName  string `json:"file_name"`  // e.g., JOB1_CHART.png
	LabelSkip int    `json:"label_skip"` // 0 = label every category
}

// Export defines where results and charts are written
type Export struct {
	OutputDir string `json:"outputDir" yaml:"outputDir"` // base dir, one sub dir per report
	ChartsDir string `json:"chartsDir" yaml:"chartsDir"` // defaults to OutputDir
	DB        string `json:"db" yaml:"db"`               // sqlite run store, "" disables it
	Renderer  string `json:"renderer" yaml:"renderer"`   // gonum, gochart
}

// ConcurrencyConfig defines shard workers and run options
type ConcurrencyConfig struct {
	Workers           int    `json:"workers" yaml:"workers"`
	ChannelBufferSize int    `json:"channelBufferSize" yaml:"channelBufferSize"`
	RunTimeout        string `json:"runTimeout" yaml:"runTimeout"` // e.g., "5m", "" = no timeout
}

// RunSpec defines the entire run configuration
type RunSpec struct {
	Input        string            `json:"input" yaml:"input"`
	Reports      []string          `json:"reports,omitempty" yaml:"reports,omitempty"` // empty = all reports
	Export       Export            `json:"export" yaml:"export"`
	Concurrency  ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	MaxLineBytes int               `json:"maxLineBytes" yaml:"maxLineBytes"`
	Logging      bool              `json:"logging" yaml:"logging"` // enable detailed logs
}
