// Package output provides context-aware primary output for pm.
// Stdout carries data (project lists, instance names, JSON).
// Diagnostics go to stderr through the log package.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type ctxKey struct{}

// Printer writes primary output.
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Printer{w: w})
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// JSON writes v as indented JSON followed by a newline.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}
