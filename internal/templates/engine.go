package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/getlawrence/prdgate/internal/domain"
)

//go:embed *.tmpl
var templateFS embed.FS

const prdTemplate = "prd.md"

// PRDData contains all data needed to render a PRD draft
type PRDData struct {
	ItemID      string   `json:"item_id"`
	Title       string   `json:"title,omitempty"`
	Points      *int     `json:"points,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Reason      string   `json:"reason"`
	Warnings    []string `json:"warnings,omitempty"`
	Source      string   `json:"source"`
	GeneratedAt string   `json:"generated_at"`
}

// NewPRDData builds template data from a decision
func NewPRDData(d domain.Decision, source string, now time.Time) PRDData {
	return PRDData{
		ItemID:      d.ItemID,
		Title:       d.Title,
		Points:      d.Points,
		Score:       d.Score,
		Reason:      d.Reason,
		Warnings:    d.Warnings,
		Source:      source,
		GeneratedAt: now.UTC().Format("2006-01-02"),
	}
}

// TemplateEngine handles template loading and execution
type TemplateEngine struct {
	templates map[string]*template.Template
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() (*TemplateEngine, error) {
	engine := &TemplateEngine{
		templates: make(map[string]*template.Template),
	}

	if err := engine.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return engine, nil
}

// RenderPRD renders a PRD draft for one backlog item
func (e *TemplateEngine) RenderPRD(data PRDData) (string, error) {
	tmpl, exists := e.templates[prdTemplate]
	if !exists {
		return "", fmt.Errorf("prd template not found")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prd template execution failed: %w", err)
	}

	return buf.String(), nil
}

var funcs = template.FuncMap{
	"deref": func(v *int) int { return *v },
	"derefScore": func(v *float64) string {
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
}

func (e *TemplateEngine) loadTemplates() error {
	entries, err := templateFS.ReadDir(".")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := templateFS.ReadFile(entry.Name())
		if err != nil {
			return err
		}

		// Remove .tmpl extension for key
		key := strings.TrimSuffix(entry.Name(), ".tmpl")
		tmpl, err := template.New(key).Funcs(funcs).Parse(string(content))
		if err != nil {
			return err
		}
		e.templates[key] = tmpl
	}

	return nil
}
