package deck

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"deckbox/internal/decklist"
	"deckbox/internal/scryfall"
)

// Origin records how a card entered the deck.
type Origin int

const (
	// OriginSource cards were parsed straight from the decklist.
	OriginSource Origin = iota
	// OriginDerived cards were synthesized for the other face of a double-sided card.
	OriginDerived
	// OriginReversible cards were synthesized for a face of a reversible card.
	OriginReversible
)

// ReversiblePrefix marks names of reversible faces so they never collide with
// a normal card of the same name.
const ReversiblePrefix = "REVERSIBLE-"

// DefaultMaxNameLength bounds deck names when no limit is configured.
const DefaultMaxNameLength = 64

// Card is one requested card and its resolution state.
type Card struct {
	decklist.Line
	ImageURL string
	Origin   Origin
}

// IsDerived reports whether the card was synthesized during canonicalization.
func (c *Card) IsDerived() bool {
	return c.Origin != OriginSource
}

// Label names the card for log and manifest messages.
func (c *Card) Label() string {
	if c.HasPrinting() {
		return fmt.Sprintf("%s (%s %s)", c.Name, strings.ToUpper(c.SetCode), c.CollectorNumber)
	}
	return c.Name
}

// Deck holds the cards of one build.
type Deck struct {
	Name     string
	Cards    []*Card
	Size     int
	Errors   int
	DumpPath string
}

// New creates an empty deck.
func New(name string) *Deck {
	return &Deck{Name: name}
}

// Populate adds one source card per parsed line.
func (d *Deck) Populate(lines []decklist.Line) {
	for _, line := range lines {
		d.Cards = append(d.Cards, &Card{Line: line, Origin: OriginSource})
	}
	d.Recount()
}

// Recount sets Size to the quantity sum of the current cards.
func (d *Deck) Recount() {
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	d.Size = total
}

// Identifiers builds one lookup key per card, preferring set+collector.
func (d *Deck) Identifiers() []scryfall.Identifier {
	ids := make([]scryfall.Identifier, 0, len(d.Cards))
	for _, c := range d.Cards {
		ids = append(ids, IdentifierFor(c))
	}
	return ids
}

// IdentifierFor returns the lookup key for a single card.
func IdentifierFor(c *Card) scryfall.Identifier {
	if c.HasPrinting() {
		return scryfall.Identifier{
			Set:             strings.ToLower(c.SetCode),
			CollectorNumber: c.CollectorNumber,
		}
	}
	return scryfall.Identifier{Name: c.Name}
}

// GeneratedName returns the fallback deck name for a build started at t.
func GeneratedName(t time.Time) string {
	return "deck-" + t.Format("2006-01-02-15-04-05")
}

// ResolveName returns the requested name when it is safe to use as a
// directory name, otherwise a generated one.
func ResolveName(requested string, maxLen int, now time.Time) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLength
	}
	name := strings.TrimSpace(requested)
	if !ValidName(name, maxLen) {
		return GeneratedName(now)
	}
	return name
}

// ValidName reports whether name is non-empty, at most maxLen runes and free
// of characters that are reserved on common filesystems.
func ValidName(name string, maxLen int) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if utf8.RuneCountInString(name) > maxLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return false
		}
	}
	return true
}
