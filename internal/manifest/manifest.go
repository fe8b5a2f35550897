package manifest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"deckbox/internal/deck"
)

// ErrorHeader opens the error section of a manifest.
const ErrorHeader = "Errors:"

// Writer renders a deck manifest and its error journal.
type Writer struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool
	entries       int
}

// NewWriter writes the manifest to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Create truncates the file at path and writes the manifest into it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	return &Writer{out: f, closer: f}, nil
}

// WriteDeck writes the deck header and one line per card.
func (w *Writer) WriteDeck(d *deck.Deck) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Deck: %s\n", d.Name)
	fmt.Fprintf(&b, "Deck size: %d\n\n", d.Size)
	for _, c := range d.Cards {
		b.WriteString(CardLine(c))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// CardLine renders "<qty> <name> [<SET> <collector>] <url|->".
func CardLine(c *deck.Card) string {
	parts := []string{fmt.Sprint(c.Quantity), c.Name}
	if c.HasPrinting() {
		parts = append(parts, strings.ToUpper(c.SetCode), c.CollectorNumber)
	}
	url := c.ImageURL
	if url == "" {
		url = "-"
	}
	parts = append(parts, url)
	return strings.Join(parts, " ")
}

// AddError appends a numbered entry, writing the section header first if this
// is the first entry.
func (w *Writer) AddError(msg string) error {
	if !w.headerWritten {
		if _, err := fmt.Fprintf(w.out, "\n%s\n", ErrorHeader); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		w.headerWritten = true
	}
	w.entries++
	if _, err := fmt.Fprintf(w.out, "%d. %s\n", w.entries, msg); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Errors returns the number of entries written so far.
func (w *Writer) Errors() int {
	return w.entries
}

// Close closes the underlying file, if any. Later calls are no-ops.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}
