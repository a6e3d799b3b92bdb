package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	qmd "github.com/alnah/go-qmd"
)

// testEnv returns an Environment with captured output and a private
// environment variable table.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// staticMockConverter returns a fixed result and records its inputs.
type staticMockConverter struct {
	mu     sync.Mutex
	result *qmd.Result
	err    error
	inputs []qmd.Input
}

func (m *staticMockConverter) Convert(_ context.Context, input qmd.Input) (*qmd.Result, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockPool hands out one shared converter.
type mockPool struct {
	conv       CLIConverter
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *mockPool) Acquire() (CLIConverter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int {
	return p.size
}
