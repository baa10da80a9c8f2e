package backlog

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	commentPattern     = regexp.MustCompile(`(?s)<!--(.*?)-->`)
	annotationPrefix   = regexp.MustCompile(`(?i)^\s*score\b`)
	annotationPattern  = regexp.MustCompile(`(?is)^\s*score(?:\s+([^\s:=]+))?\s*[:=]\s*(.*?)\s*$`)
	annotationOneLiner = strings.NewReplacer("\n", " ", "\r", " ")
)

// annotation is a score comment found in the source
type annotation struct {
	itemID    string // empty for row annotations
	value     string
	line      int
	malformed bool
	raw       string
}

// scanAnnotations finds every score comment outside the excluded byte ranges.
// Comments that start with "score" but do not follow the grammar are returned
// with malformed set.
func scanAnnotations(source []byte, excluded [][2]int) []annotation {
	var found []annotation
	for _, loc := range commentPattern.FindAllSubmatchIndex(source, -1) {
		if inRanges(loc[0], excluded) {
			continue
		}
		body := string(source[loc[2]:loc[3]])
		if !annotationPrefix.MatchString(body) {
			continue
		}
		line := lineAt(source, loc[0])
		m := annotationPattern.FindStringSubmatch(body)
		if m == nil {
			found = append(found, annotation{
				line:      line,
				malformed: true,
				raw:       strings.TrimSpace(annotationOneLiner.Replace(body)),
			})
			continue
		}
		found = append(found, annotation{
			itemID: strings.TrimSpace(m[1]),
			value:  m[2],
			line:   line,
		})
	}
	return found
}

func inRanges(offset int, ranges [][2]int) bool {
	for _, r := range ranges {
		if offset >= r[0] && offset < r[1] {
			return true
		}
	}
	return false
}

// lineAt returns the 1-based line number of a byte offset
func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
