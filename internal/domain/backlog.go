package domain

// ScoreSource records where an item's score was read from
type ScoreSource string

const (
	ScoreSourceNone          ScoreSource = ""
	ScoreSourceColumn        ScoreSource = "column"
	ScoreSourceAnnotation    ScoreSource = "annotation"
	ScoreSourceRowAnnotation ScoreSource = "row-annotation"
)

// Item represents one row of a backlog table
type Item struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Points      *int        `json:"points" yaml:"points"`
	Score       *float64    `json:"score" yaml:"score"`
	ScoreSource ScoreSource `json:"score_source,omitempty" yaml:"score_source,omitempty"`
	Line        int         `json:"line,omitempty" yaml:"line,omitempty"`
	Warnings    []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HasPoints reports whether a usable point estimate was parsed
func (i Item) HasPoints() bool { return i.Points != nil }

// HasScore reports whether a usable score was parsed
func (i Item) HasScore() bool { return i.Score != nil }

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }
