// Package prd decides whether a backlog item needs a full product
// requirements document or whether its backlog row is enough to work from.
package prd

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/getlawrence/prdgate/internal/domain"
)

const (
	// DefaultPointsThreshold is the exclusive upper bound on points for skipping a PRD
	DefaultPointsThreshold = 5
	// DefaultScoreThreshold is the inclusive lower bound on score for skipping a PRD
	DefaultScoreThreshold = 3.0
)

// ErrInvalidPolicy is returned by Policy.Validate
var ErrInvalidPolicy = errors.New("invalid decision policy")

// ShouldGeneratePRD reports whether a full PRD must be generated for an item
// with the given point estimate and score. Only small, high-scoring items
// (points < 5 and score >= 3.0) skip the PRD.
func ShouldGeneratePRD(points int, score float64) bool {
	if points < DefaultPointsThreshold && score >= DefaultScoreThreshold {
		return false
	}
	return true
}

// Policy holds the thresholds used to decide on PRD generation
type Policy struct {
	// Items with fewer points than PointsBelow may skip the PRD
	PointsBelow int `json:"points_below" yaml:"points_below"`
	// Items scoring at least ScoreAtLeast may skip the PRD
	ScoreAtLeast float64 `json:"score_at_least" yaml:"score_at_least"`
}

// DefaultPolicy returns the standard thresholds
func DefaultPolicy() Policy {
	return Policy{
		PointsBelow:  DefaultPointsThreshold,
		ScoreAtLeast: DefaultScoreThreshold,
	}
}

// Validate checks that the thresholds are usable
func (p Policy) Validate() error {
	if p.PointsBelow < 0 {
		return fmt.Errorf("%w: points threshold %d is negative", ErrInvalidPolicy, p.PointsBelow)
	}
	if math.IsNaN(p.ScoreAtLeast) || math.IsInf(p.ScoreAtLeast, 0) {
		return fmt.Errorf("%w: score threshold must be a finite number", ErrInvalidPolicy)
	}
	return nil
}

// ShouldGenerate applies the policy thresholds to a points/score pair
func (p Policy) ShouldGenerate(points int, score float64) bool {
	if points < p.PointsBelow && score >= p.ScoreAtLeast {
		return false
	}
	return true
}

// Decide evaluates a backlog item. Items with missing or malformed points or
// score always get a PRD.
func (p Policy) Decide(item domain.Item) domain.Decision {
	d := domain.Decision{
		ItemID:   item.ID,
		Title:    item.Title,
		Points:   item.Points,
		Score:    item.Score,
		Warnings: append([]string(nil), item.Warnings...),
	}

	switch {
	case !item.HasPoints() && !item.HasScore():
		d.GeneratePRD = true
		d.Rule = domain.RuleMissingBoth
		d.Reason = "points and score are missing, generating PRD by default"
		return d
	case !item.HasPoints():
		d.GeneratePRD = true
		d.Rule = domain.RuleMissingPoints
		d.Reason = "points are missing, generating PRD by default"
		return d
	case !item.HasScore():
		d.GeneratePRD = true
		d.Rule = domain.RuleMissingScore
		d.Reason = "score is missing, generating PRD by default"
		return d
	}

	points, score := *item.Points, *item.Score
	d.GeneratePRD = p.ShouldGenerate(points, score)
	switch {
	case !d.GeneratePRD:
		d.Rule = domain.RuleSkip
		d.Reason = fmt.Sprintf("points %d < %d and score %s >= %s, backlog parsing is sufficient",
			points, p.PointsBelow, formatScore(score), formatScore(p.ScoreAtLeast))
	case points >= p.PointsBelow:
		d.Rule = domain.RulePoints
		d.Reason = fmt.Sprintf("points %d is not below %d", points, p.PointsBelow)
	default:
		d.Rule = domain.RuleScore
		d.Reason = fmt.Sprintf("score %s is below %s", formatScore(score), formatScore(p.ScoreAtLeast))
	}
	return d
}

// DecideAll evaluates every item in order
func (p Policy) DecideAll(items []domain.Item) []domain.Decision {
	decisions := make([]domain.Decision, 0, len(items))
	for _, item := range items {
		decisions = append(decisions, p.Decide(item))
	}
	return decisions
}

// formatScore prints at least one decimal so 3 reads as 3.0
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return s
}
