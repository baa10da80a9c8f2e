package backlog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// column identifies the role of a table column
type column int

const (
	columnUnknown column = iota
	columnID
	columnTitle
	columnPoints
	columnScore
)

var headerAliases = map[string]column{
	"id":               columnID,
	"item":             columnID,
	"item id":          columnID,
	"key":              columnID,
	"ticket":           columnID,
	"#":                columnID,
	"title":            columnTitle,
	"summary":          columnTitle,
	"name":             columnTitle,
	"story":            columnTitle,
	"description":      columnTitle,
	"points":           columnPoints,
	"pts":              columnPoints,
	"story points":     columnPoints,
	"sp":               columnPoints,
	"estimate":         columnPoints,
	"score":            columnScore,
	"priority score":   columnScore,
	"complexity score": columnScore,
}

// classifyHeader maps a header cell to a column role
func classifyHeader(text string) column {
	key := strings.ToLower(strings.Join(strings.Fields(text), " "))
	key = strings.TrimSuffix(key, ":")
	return headerAliases[key]
}

var (
	pointsPattern = regexp.MustCompile(`(?i)^(\d+)\s*(?:pts?|points?|sp)?$`)
	scorePattern  = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// isMissing reports cell values that stand for "not estimated yet"
func isMissing(text string) bool {
	switch strings.ToLower(text) {
	case "", "-", "—", "?", "tbd", "n/a", "na":
		return true
	}
	return false
}

// parsePoints returns nil with no error for missing values and nil with an
// error for malformed ones
func parsePoints(text string) (*int, error) {
	text = strings.TrimSpace(text)
	if isMissing(text) {
		return nil, nil
	}
	m := pointsPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("malformed points %q", text)
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("malformed points %q", text)
	}
	return &v, nil
}

// parseScore follows the same missing/malformed convention as parsePoints
func parseScore(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if isMissing(text) {
		return nil, nil
	}
	if !scorePattern.MatchString(text) {
		return nil, fmt.Errorf("malformed score %q", text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("malformed score %q", text)
	}
	return &v, nil
}
