package backlog

import (
	"strings"

	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parser turns Markdown backlog documents into items
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a parser with GFM table support
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

var defaultParser = NewParser()

// Parse parses source with the default parser
func Parse(source []byte) (*Backlog, error) {
	return defaultParser.Parse(source)
}

// Parse extracts every backlog item from the document. It fails only when the
// document has no table with an ID column; problems with individual cells or
// annotations are reported as warnings.
func (p *Parser) Parse(source []byte) (*Backlog, error) {
	doc := p.md.Parser().Parse(text.NewReader(source))

	var tables []*east.Table
	var codeRanges [][2]int
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *east.Table:
			tables = append(tables, node)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if r, ok := blockRange(node); ok {
				codeRanges = append(codeRanges, r)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if r, ok := inlineRange(node); ok {
				codeRanges = append(codeRanges, r)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	b := newBacklog()
	rowsByLine := make(map[int]int)
	found := false
	for _, table := range tables {
		if p.parseTable(table, source, b, rowsByLine) {
			found = true
		}
	}
	if !found {
		return nil, ErrNoBacklogTable
	}

	applyAnnotations(b, scanAnnotations(source, codeRanges), rowsByLine)
	return b, nil
}

// parseTable adds the rows of table to b. It returns false when the table has
// no ID column and therefore is not a backlog table.
func (p *Parser) parseTable(table *east.Table, source []byte, b *Backlog, rowsByLine map[int]int) bool {
	var roles []column
	hasID := false
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		header, ok := child.(*east.TableHeader)
		if !ok {
			continue
		}
		for cell := header.FirstChild(); cell != nil; cell = cell.NextSibling() {
			role := classifyHeader(cellText(cell, source))
			if role == columnID {
				if hasID {
					role = columnUnknown
				}
				hasID = true
			}
			roles = append(roles, role)
		}
		break
	}
	if !hasID {
		return false
	}

	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		row, ok := child.(*east.TableRow)
		if !ok {
			continue
		}
		item := domain.Item{Line: rowLine(row, source)}
		var pointsText, scoreText string
		hasScoreColumn := false

		i := 0
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if i >= len(roles) {
				break
			}
			value := cellText(cell, source)
			switch roles[i] {
			case columnID:
				item.ID = value
			case columnTitle:
				if item.Title == "" {
					item.Title = value
				}
			case columnPoints:
				pointsText = value
			case columnScore:
				scoreText = value
				hasScoreColumn = true
			}
			i++
		}

		if item.ID == "" {
			continue
		}

		points, err := parsePoints(pointsText)
		if err != nil {
			item.Warnings = append(item.Warnings, err.Error())
		}
		item.Points = points

		if hasScoreColumn {
			score, err := parseScore(scoreText)
			if err != nil {
				item.Warnings = append(item.Warnings, err.Error())
			}
			if score != nil {
				item.Score = score
				item.ScoreSource = domain.ScoreSourceColumn
			}
		}

		if !b.add(item) {
			b.warnf("duplicate item %q at line %d ignored", item.ID, item.Line)
			continue
		}
		if item.Line > 0 {
			rowsByLine[item.Line] = len(b.Items) - 1
		}
	}
	return true
}

// applyAnnotations overrides scores with comment annotations. Row annotations
// win over standalone ones, which win over the score column.
func applyAnnotations(b *Backlog, annotations []annotation, rowsByLine map[int]int) {
	for _, a := range annotations {
		if a.malformed {
			b.warnf("malformed score annotation at line %d: %q", a.line, a.raw)
			continue
		}
		if a.itemID != "" {
			continue
		}
		idx, ok := rowsByLine[a.line]
		if !ok {
			b.warnf("score annotation at line %d is not on a backlog row and has no item id", a.line)
			continue
		}
		item := &b.Items[idx]
		score, err := parseScore(a.value)
		if err != nil || score == nil {
			item.Warnings = append(item.Warnings, "ignored score annotation: "+annotationProblem(a, err))
			continue
		}
		item.Score = score
		item.ScoreSource = domain.ScoreSourceRowAnnotation
	}

	for _, a := range annotations {
		if a.malformed || a.itemID == "" {
			continue
		}
		idx, ok := b.index[normalizeID(a.itemID)]
		if !ok {
			b.warnf("score annotation at line %d refers to unknown item %q", a.line, a.itemID)
			continue
		}
		item := &b.Items[idx]
		if item.ScoreSource == domain.ScoreSourceRowAnnotation {
			continue
		}
		score, err := parseScore(a.value)
		if err != nil || score == nil {
			b.warnf("ignored score annotation for %q at line %d: %s", a.itemID, a.line, annotationProblem(a, err))
			continue
		}
		item.Score = score
		item.ScoreSource = domain.ScoreSourceAnnotation
	}
}

func annotationProblem(a annotation, err error) string {
	if err != nil {
		return err.Error()
	}
	return "empty score value"
}

// cellText flattens the inline content of a table cell to plain text.
// Inline HTML, including comments, is dropped.
func cellText(cell ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(cell, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			sb.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(strings.ReplaceAll(sb.String(), `\|`, "|"))
}

// rowLine finds the source line of a table row from its first inline segment
func rowLine(row ast.Node, source []byte) int {
	offset := -1
	_ = ast.Walk(row, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || offset >= 0 {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			offset = node.Segment.Start
			return ast.WalkStop, nil
		case *ast.RawHTML:
			if node.Segments.Len() > 0 {
				offset = node.Segments.At(0).Start
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	if offset < 0 {
		return 0
	}
	return lineAt(source, offset)
}

func blockRange(n ast.Node) ([2]int, bool) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return [2]int{}, false
	}
	return [2]int{lines.At(0).Start, lines.At(lines.Len() - 1).Stop}, true
}

// inlineRange spans the text segments of an inline node such as a code span
func inlineRange(n ast.Node) ([2]int, bool) {
	start, stop := -1, -1
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		t, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		if start < 0 || t.Segment.Start < start {
			start = t.Segment.Start
		}
		if t.Segment.Stop > stop {
			stop = t.Segment.Stop
		}
	}
	if start < 0 {
		return [2]int{}, false
	}
	return [2]int{start, stop}, true
}
