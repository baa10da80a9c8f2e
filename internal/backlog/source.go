package backlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/getlawrence/prdgate/internal/logger"
	"github.com/go-enry/go-enry/v2"
)

const (
	// StdinArg is the backlog argument that reads from standard input
	StdinArg = "-"

	sourceInline = "inline"
	sourceStdin  = "stdin"
	markdownLang = "Markdown"
)

// Source is raw backlog text together with where it came from
type Source struct {
	Name    string
	Content []byte
}

// Reader resolves backlog text from command arguments, files or stdin
type Reader struct {
	Stdin  io.Reader
	Logger logger.Logger
}

// NewReader creates a reader bound to the process stdin
func NewReader(log logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{Stdin: os.Stdin, Logger: log}
}

// FromArg returns the literal argument text, or stdin when arg is "-"
func (r *Reader) FromArg(ctx context.Context, arg string) (*Source, error) {
	if arg != StdinArg {
		return &Source{Name: sourceInline, Content: []byte(arg)}, nil
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r.Stdin)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read backlog from stdin: %w", res.err)
		}
		return &Source{Name: sourceStdin, Content: res.data}, nil
	}
}

// FromFile reads a backlog file. Files that are not recognised as Markdown are
// still parsed, with a warning.
func (r *Reader) FromFile(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backlog file: %w", err)
	}
	if lang := DetectLanguage(path, content); lang != markdownLang {
		if lang == "" {
			lang = "unknown"
		}
		r.Logger.Warnf("%s does not look like Markdown (detected %s), parsing anyway", path, lang)
	}
	r.Logger.Debugf("read %d bytes from %s", len(content), path)
	return &Source{Name: path, Content: content}, nil
}

// DetectLanguage classifies a file by name and content
func DetectLanguage(path string, content []byte) string {
	return enry.GetLanguage(filepath.Base(path), content)
}
