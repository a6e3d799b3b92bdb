package main

import (
	"context"
	"fmt"

	qmd "github.com/alnah/go-qmd"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input qmd.Input) (*qmd.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*qmd.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// poolAdapter exposes a *qmd.ConverterPool as a Pool.
type poolAdapter struct {
	pool *qmd.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (CLIConverter, error) {
	conv, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release panics when given a converter the pool did not hand out.
func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*qmd.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// pooledRenderer converts each request with a converter borrowed from the
// pool, bounding concurrent browser work.
type pooledRenderer struct {
	pool Pool
}

func (r *pooledRenderer) Convert(ctx context.Context, input qmd.Input) (*qmd.Result, error) {
	conv, err := r.pool.Acquire()
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conv)
	return conv.Convert(ctx, input)
}
