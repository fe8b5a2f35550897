package decklist

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrParse marks a decklist line that could not be turned into a Line.
var ErrParse = errors.New("invalid decklist line")

// DualSeparator splits the two face names of a double-faced card.
const DualSeparator = "//"

// Line is one parsed decklist entry.
type Line struct {
	Quantity        int
	Name            string
	SetCode         string
	CollectorNumber string
}

// HasPrinting reports whether the line pins a specific printing.
func (l Line) HasPrinting() bool {
	return l.SetCode != "" && l.CollectorNumber != ""
}

// Grammar controls how the trailing set code suffix is recognized.
type Grammar struct {
	MinSetCodeLength int
	MaxSetCodeLength int
}

// DefaultGrammar accepts set codes between 3 and 5 characters.
func DefaultGrammar() Grammar {
	return Grammar{MinSetCodeLength: 3, MaxSetCodeLength: 5}
}

// Parser turns decklist text into lines.
type Parser struct {
	grammar Grammar
}

// NewParser creates a parser, falling back to the default grammar for unset bounds.
func NewParser(g Grammar) *Parser {
	def := DefaultGrammar()
	if g.MinSetCodeLength <= 0 {
		g.MinSetCodeLength = def.MinSetCodeLength
	}
	if g.MaxSetCodeLength < g.MinSetCodeLength {
		g.MaxSetCodeLength = def.MaxSetCodeLength
		if g.MaxSetCodeLength < g.MinSetCodeLength {
			g.MaxSetCodeLength = g.MinSetCodeLength
		}
	}
	return &Parser{grammar: g}
}

// Parse parses every non-blank, non-comment line of text.
func (p *Parser) Parse(text string) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		line, err := p.ParseLine(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return lines, nil
}

// ParseLine parses a single "<quantity> <name> [<set> <collector>]" line.
func (p *Parser) ParseLine(raw string) (Line, error) {
	raw = strings.TrimSpace(raw)
	qtyText, descriptor, ok := cutSpace(raw)
	if !ok {
		return Line{}, fmt.Errorf("%w: %q has no card name", ErrParse, raw)
	}

	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty < 1 {
		return Line{}, fmt.Errorf("%w: quantity %q must be a whole number of at least 1", ErrParse, qtyText)
	}

	line := Line{Quantity: qty}
	front, remainder, dual := strings.Cut(descriptor, DualSeparator)
	if !dual {
		remainder = descriptor
	}

	name, set, collector := p.splitSuffix(remainder, dual)
	if dual {
		name = strings.TrimSpace(front)
	}
	if name == "" {
		return Line{}, fmt.Errorf("%w: %q has no card name", ErrParse, raw)
	}

	line.Name = name
	line.SetCode = set
	line.CollectorNumber = collector
	return line, nil
}

// splitSuffix separates a trailing "<set> <collector>" pair from text. When
// allowBare is false a suffix is only taken if some name text precedes it.
func (p *Parser) splitSuffix(text string, allowBare bool) (name, set, collector string) {
	fields := strings.Fields(text)
	name = strings.Join(fields, " ")
	if len(fields) < 2 {
		return name, "", ""
	}
	if !allowBare && len(fields) < 3 {
		return name, "", ""
	}

	code, ok := p.setCode(fields[len(fields)-2])
	if !ok || !isCollectorNumber(fields[len(fields)-1]) {
		return name, "", ""
	}
	return strings.Join(fields[:len(fields)-2], " "), code, fields[len(fields)-1]
}

func (p *Parser) setCode(token string) (string, bool) {
	if strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")") && len(token) > 2 {
		token = token[1 : len(token)-1]
	}
	n := len(token)
	if n < p.grammar.MinSetCodeLength || n > p.grammar.MaxSetCodeLength {
		return "", false
	}
	letters := 0
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
		case r >= '0' && r <= '9':
		default:
			return "", false
		}
	}
	return token, letters > 0
}

func isCollectorNumber(token string) bool {
	for _, r := range token {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func cutSpace(s string) (before, after string, ok bool) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", false
	}
	after = strings.TrimSpace(s[i:])
	return s[:i], after, after != ""
}
