package domain

// RuleOutcome names the clause that produced a decision
type RuleOutcome string

const (
	// RuleSkip means the item is small and well understood; no PRD needed
	RuleSkip RuleOutcome = "skip"
	// RulePoints means the point estimate is at or above the threshold
	RulePoints RuleOutcome = "points"
	// RuleScore means the score is below the threshold
	RuleScore         RuleOutcome = "score"
	RuleMissingPoints RuleOutcome = "missing-points"
	RuleMissingScore  RuleOutcome = "missing-score"
	RuleMissingBoth   RuleOutcome = "missing-both"
)

// Decision is the outcome of evaluating one backlog item
type Decision struct {
	ItemID      string      `json:"item_id" yaml:"item_id"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	GeneratePRD bool        `json:"generate_prd" yaml:"generate_prd"`
	Reason      string      `json:"reason" yaml:"reason"`
	Rule        RuleOutcome `json:"rule" yaml:"rule"`
	Points      *int        `json:"points" yaml:"points"`
	Score       *float64    `json:"score" yaml:"score"`
	Warnings    []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Incomplete reports whether the decision fell back to the default because
// points or score were unavailable
func (d Decision) Incomplete() bool {
	switch d.Rule {
	case RuleMissingPoints, RuleMissingScore, RuleMissingBoth:
		return true
	}
	return false
}

// Summary aggregates decision counts for a report
type Summary struct {
	Total       int `json:"total" yaml:"total"`
	GeneratePRD int `json:"generate_prd" yaml:"generate_prd"`
	Skip        int `json:"skip" yaml:"skip"`
	Incomplete  int `json:"incomplete" yaml:"incomplete"`
}

// Report contains the decisions for every item of a backlog
type Report struct {
	Source    string     `json:"source,omitempty" yaml:"source,omitempty"`
	Decisions []Decision `json:"decisions" yaml:"decisions"`
	Warnings  []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Summary   Summary    `json:"summary" yaml:"summary"`
}

// NewReport builds a report and computes its summary
func NewReport(source string, decisions []Decision, warnings []string) *Report {
	r := &Report{
		Source:    source,
		Decisions: decisions,
		Warnings:  warnings,
	}
	for _, d := range decisions {
		r.Summary.Total++
		if d.GeneratePRD {
			r.Summary.GeneratePRD++
		} else {
			r.Summary.Skip++
		}
		if d.Incomplete() {
			r.Summary.Incomplete++
		}
	}
	return r
}
