package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestConvertFile - Single File Conversion
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	meta := pipeline.NewMetadata()
	meta.Set("title", "Report")
	meta.Set("author", "Ada")
	result := &qmd.Result{
		Fragment: `<div id="qmd-rendered-content"><p>x</p></div>`,
		Metadata: meta,
		HTML:     []byte("<!DOCTYPE html><html></html>"),
		PDF:      []byte("%PDF-1.7"),
	}

	tests := []struct {
		name     string
		params   conversionParams
		wantBody string
		wantMeta bool
	}{
		{
			name:     "fragment",
			params:   conversionParams{},
			wantBody: result.Fragment,
		},
		{
			name:     "standalone",
			params:   conversionParams{standalone: true},
			wantBody: string(result.HTML),
		},
		{
			name:     "pdf",
			params:   conversionParams{pdf: true},
			wantBody: string(result.PDF),
		},
		{
			name:     "metadata export",
			params:   conversionParams{metadata: true},
			wantBody: result.Fragment,
			wantMeta: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			src := writeFile(t, dir, "doc.qmd", "# Doc")
			out := filepath.Join(dir, "out", "doc.html")
			conv := &staticMockConverter{result: result}

			got := convertFile(context.Background(), conv, FileToConvert{InputPath: src, OutputPath: out}, &tt.params)
			if got.Err != nil {
				t.Fatalf("convertFile() error = %v", got.Err)
			}
			if body := readFile(t, out); body != tt.wantBody {
				t.Errorf("output = %q, want %q", body, tt.wantBody)
			}

			if len(conv.inputs) != 1 {
				t.Fatalf("Convert called %d times, want 1", len(conv.inputs))
			}
			in := conv.inputs[0]
			if in.Source != "# Doc" || !filepath.IsAbs(in.SourcePath) {
				t.Errorf("input = %+v, want source text and absolute path", in)
			}

			if !tt.wantMeta {
				if got.MetadataPath != "" {
					t.Errorf("MetadataPath = %q, want empty", got.MetadataPath)
				}
				return
			}
			if got.MetadataPath != filepath.Join(dir, "out", "doc.yaml") {
				t.Errorf("MetadataPath = %q", got.MetadataPath)
			}
			yml := readFile(t, got.MetadataPath)
			if strings.Index(yml, "title:") > strings.Index(yml, "author:") {
				t.Errorf("metadata should keep document order, got %q", yml)
			}
		})
	}
}

func TestConvertFile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		got := convertFile(context.Background(), &staticMockConverter{}, FileToConvert{
			InputPath:  filepath.Join(dir, "missing.qmd"),
			OutputPath: filepath.Join(dir, "missing.html"),
		}, &conversionParams{})
		if !errors.Is(got.Err, ErrReadSource) {
			t.Errorf("error = %v, want ErrReadSource", got.Err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeFile(t, dir, "blank.qmd", "")
		conv := &staticMockConverter{}
		got := convertFile(context.Background(), conv, FileToConvert{
			InputPath: src, OutputPath: filepath.Join(dir, "blank.html"),
		}, &conversionParams{})
		if !errors.Is(got.Err, ErrEmptySource) {
			t.Errorf("error = %v, want ErrEmptySource", got.Err)
		}
		if len(conv.inputs) != 0 {
			t.Error("converter should not be called for an empty file")
		}
	})

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeFile(t, dir, "doc.qmd", "   ")
		out := filepath.Join(dir, "doc.html")
		got := convertFile(context.Background(), &staticMockConverter{err: qmd.ErrNoMathRenderer}, FileToConvert{
			InputPath: src, OutputPath: out,
		}, &conversionParams{})
		if !errors.Is(got.Err, qmd.ErrNoMathRenderer) {
			t.Errorf("error = %v, want ErrNoMathRenderer", got.Err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("no output should be written on failure")
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Parallel Conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []FileToConvert
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		src := writeFile(t, dir, name+".qmd", "# "+name)
		files = append(files, FileToConvert{InputPath: src, OutputPath: filepath.Join(dir, name+".html")})
	}

	conv := &staticMockConverter{result: &qmd.Result{Fragment: "<p></p>", Metadata: pipeline.NewMetadata()}}
	pool := &mockPool{conv: conv, size: 2}

	results := convertBatch(context.Background(), pool, files, &conversionParams{})

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d] error = %v", i, r.Err)
		}
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d] = %q, want input order kept", i, r.InputPath)
		}
	}
	if pool.acquired != 2 || pool.released != 2 {
		t.Errorf("acquired/released = %d/%d, want 2/2", pool.acquired, pool.released)
	}
	if len(conv.inputs) != len(files) {
		t.Errorf("Convert called %d times, want %d", len(conv.inputs), len(files))
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	pool := &mockPool{size: 2}
	if got := convertBatch(context.Background(), pool, nil, &conversionParams{}); got != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", got)
	}
	if pool.acquired != 0 {
		t.Error("no converter should be acquired for an empty batch")
	}
}

func TestConvertBatch_AcquireError(t *testing.T) {
	t.Parallel()

	files := []FileToConvert{{InputPath: "a.qmd"}, {InputPath: "b.qmd"}}
	pool := &mockPool{size: 1, acquireErr: errors.New("no browser")}

	results := convertBatch(context.Background(), pool, files, &conversionParams{})
	for _, r := range results {
		if !errors.Is(r.Err, ErrConverterCreate) {
			t.Errorf("%s error = %v, want ErrConverterCreate", r.InputPath, r.Err)
		}
	}
}

func TestConvertBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []FileToConvert{{InputPath: "a.qmd"}, {InputPath: "b.qmd"}}
	pool := &mockPool{conv: &staticMockConverter{}, size: 1}

	results := convertBatch(ctx, pool, files, &conversionParams{})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s error = %v, want context.Canceled", r.InputPath, r.Err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result Reporting
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.qmd", OutputPath: "a.html", MetadataPath: "a.yaml", Duration: 12 * time.Millisecond},
		{InputPath: "b.qmd", Err: errors.New("boom")},
	}

	t.Run("normal", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(nil)
		summary := printResultsWithWriter(results, false, false, env)

		if summary.Succeeded != 1 || summary.Failed != 1 || summary.FirstErr == nil {
			t.Errorf("summary = %+v", summary)
		}
		for _, want := range []string{"Created a.html", "Created a.yaml", "1 succeeded, 1 failed"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("stdout missing %q: %q", want, stdout)
			}
		}
		if !strings.Contains(stderr.String(), "FAILED b.qmd: boom") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(nil)
		printResultsWithWriter(results, true, false, env)
		if stdout.Len() != 0 {
			t.Errorf("quiet stdout = %q, want empty", stdout)
		}
		if !strings.Contains(stderr.String(), "FAILED") {
			t.Error("failures must be reported even when quiet")
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil)
		printResultsWithWriter(results[:1], false, true, env)
		if !strings.Contains(stdout.String(), "a.qmd -> a.html (12ms)") {
			t.Errorf("verbose stdout = %q", stdout)
		}
	})
}

func TestPoolAdapter_ReleasePanicsOnForeignConverter(t *testing.T) {
	t.Parallel()

	pool := qmd.NewConverterPool(1)
	defer pool.Close()
	adapter := &poolAdapter{pool: pool}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Release() should panic on a converter the pool did not hand out")
		}
	}()
	adapter.Release(&staticMockConverter{})
}

func TestPooledRenderer(t *testing.T) {
	t.Parallel()

	conv := &staticMockConverter{result: &qmd.Result{Fragment: "<p>ok</p>"}}
	pool := &mockPool{conv: conv, size: 1}
	r := &pooledRenderer{pool: pool}

	res, err := r.Convert(context.Background(), qmd.Input{Source: "ok"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Fragment != "<p>ok</p>" {
		t.Errorf("Fragment = %q", res.Fragment)
	}
	if pool.acquired != 1 || pool.released != 1 {
		t.Errorf("acquired/released = %d/%d, want 1/1", pool.acquired, pool.released)
	}

	pool.acquireErr = qmd.ErrPoolClosed
	if _, err := r.Convert(context.Background(), qmd.Input{Source: "ok"}); !errors.Is(err, qmd.ErrPoolClosed) {
		t.Errorf("Convert() error = %v, want ErrPoolClosed", err)
	}
}
