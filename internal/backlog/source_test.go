package backlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getlawrence/prdgate/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Logf(format string, args ...interface{})   {}
func (r *recordingLogger) Log(msg string)                            {}
func (r *recordingLogger) Debugf(format string, args ...interface{}) {}
func (r *recordingLogger) Warnf(format string, args ...interface{}) {
	r.warnings = append(r.warnings, format)
}

func TestReader_FromArg_Inline(t *testing.T) {
	r := NewReader(nil)
	src, err := r.FromArg(context.Background(), "| ID |\n|---|\n| A |\n")
	require.NoError(t, err)
	assert.Equal(t, "inline", src.Name)
	assert.Contains(t, string(src.Content), "| A |")
}

func TestReader_FromArg_Stdin(t *testing.T) {
	r := &Reader{Stdin: strings.NewReader(sprintBacklog), Logger: logger.Nop()}
	src, err := r.FromArg(context.Background(), StdinArg)
	require.NoError(t, err)
	assert.Equal(t, "stdin", src.Name)
	assert.Equal(t, sprintBacklog, string(src.Content))
}

type blockingReader struct{ ch chan struct{} }

func (b blockingReader) Read(p []byte) (int, error) {
	<-b.ch
	return 0, os.ErrClosed
}

func TestReader_FromArg_StdinCanceled(t *testing.T) {
	block := blockingReader{ch: make(chan struct{})}
	defer close(block.ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Reader{Stdin: block, Logger: logger.Nop()}
	_, err := r.FromArg(ctx, StdinArg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_FromFile(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "backlog.md")
	require.NoError(t, os.WriteFile(md, []byte(sprintBacklog), 0o644))

	rec := &recordingLogger{}
	r := &Reader{Logger: rec}
	src, err := r.FromFile(md)
	require.NoError(t, err)
	assert.Equal(t, md, src.Name)
	assert.Empty(t, rec.warnings)

	txt := filepath.Join(dir, "backlog.txt")
	require.NoError(t, os.WriteFile(txt, []byte(sprintBacklog), 0o644))
	_, err = r.FromFile(txt)
	require.NoError(t, err)
	assert.Len(t, rec.warnings, 1)

	_, err = r.FromFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, markdownLang, DetectLanguage("BACKLOG.md", []byte(sprintBacklog)))
	assert.Equal(t, "Go", DetectLanguage("main.go", []byte("package main\n")))
}
