//go:build bench

package qmd

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// benchPDFConverter returns a fixed PDF without a browser.
type benchPDFConverter struct{}

func (benchPDFConverter) ToPDF(context.Context, string, *PageSettings) ([]byte, error) {
	return []byte("%PDF-1.4\n"), nil
}

func (benchPDFConverter) Close() error { return nil }

func newBenchConverter(b *testing.B) *Converter {
	b.Helper()
	conv, err := NewConverter(withPDFConverter(benchPDFConverter{}))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = conv.Close() })
	return conv
}

// generateDocument builds a document with front matter and n sections of
// prose, math, code and callouts.
func generateDocument(n int) string {
	var sb strings.Builder
	sb.WriteString("---\ntitle: Benchmark\nauthor: Someone\ndate: today\n---\n\n")
	for i := range n {
		fmt.Fprintf(&sb, "## Section %d\n\n", i+1)
		sb.WriteString("Inline $a_i^2 + b_i^2$ and a \\vspace{1em} command.\n\n")
		sb.WriteString("$$\n\\int_0^1 x^2 \\, dx = \\frac{1}{3}\n$$\n\n")
		sb.WriteString("```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n\n")
		if i%5 == 0 {
			sb.WriteString(":::{.callout-tip}\nKeep going.\n:::\n\n")
		}
	}
	return sb.String()
}

// BenchmarkConverterConvert benchmarks the full pipeline by output mode.
// PDF printing is mocked to isolate the pipeline from the browser.
func BenchmarkConverterConvert(b *testing.B) {
	conv := newBenchConverter(b)
	ctx := context.Background()

	inputs := []struct {
		name  string
		input Input
	}{
		{"fragment_small", Input{Source: generateDocument(5)}},
		{"fragment_large", Input{Source: generateDocument(200)}},
		{"standalone_small", Input{Source: generateDocument(5), Standalone: true}},
		{"standalone_large", Input{Source: generateDocument(200), Standalone: true}},
		{"pdf_small", Input{Source: generateDocument(5), PDF: true}},
	}

	for _, in := range inputs {
		b.Run(in.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(in.input.Source)))
			for b.Loop() {
				if _, err := conv.Convert(ctx, in.input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkNewConverter benchmarks asset loading and template parsing.
func BenchmarkNewConverter(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		conv, err := NewConverter(withPDFConverter(benchPDFConverter{}))
		if err != nil {
			b.Fatal(err)
		}
		_ = conv.Close()
	}
}

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	for _, w := range []int{0, 1, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", w), func(b *testing.B) {
			for b.Loop() {
				_ = ResolvePoolSize(w)
			}
		})
	}
}

// BenchmarkConverterPool_Parallel benchmarks fragment conversions sharing a
// pool. Fragments never start a browser.
func BenchmarkConverterPool_Parallel(b *testing.B) {
	doc := Input{Source: generateDocument(20)}

	for _, size := range []int{1, 2, 4} {
		b.Run(fmt.Sprintf("pool_%d", size), func(b *testing.B) {
			pool := NewConverterPool(size)
			b.Cleanup(func() { _ = pool.Close() })

			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					conv, err := pool.Acquire()
					if err != nil {
						b.Error(err)
						return
					}
					_, err = conv.Convert(context.Background(), doc)
					pool.Release(conv)
					if err != nil {
						b.Error(err)
						return
					}
				}
			})
		})
	}
}
