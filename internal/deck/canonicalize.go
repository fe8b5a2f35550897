package deck

import (
	"strings"

	"deckbox/internal/decklist"
	"deckbox/internal/scryfall"
)

// Canonicalize replaces the deck's cards with the result of reconciling them
// against the resolved records, then recounts the deck size.
func (d *Deck) Canonicalize(records []scryfall.Card, format string) {
	d.Cards = Canonicalize(d.Cards, records, format)
	d.Recount()
}

// Canonicalize links artwork from records to cards and returns the surviving
// card set. Double-sided records gain one card per face; reversible records
// replace their source cards with REVERSIBLE- cards. The input cards are not
// modified.
func Canonicalize(cards []*Card, records []scryfall.Card, format string) []*Card {
	r := &reconciler{format: format, dropped: make(map[*Card]bool), exact: make(map[*Card]bool)}
	for _, c := range cards {
		cp := *c
		r.cards = append(r.cards, &cp)
	}

	for _, rec := range records {
		if !rec.IsReversible() && !rec.HasFaceImages() {
			r.linkFlat(rec)
			continue
		}
		r.linkFaces(rec)
	}

	survivors := make([]*Card, 0, len(r.cards))
	for _, c := range r.cards {
		if !r.dropped[c] {
			survivors = append(survivors, c)
		}
	}
	return survivors
}

type reconciler struct {
	format  string
	cards   []*Card
	dropped map[*Card]bool
	// exact holds name-only cards already linked by an exact name match.
	// A later containment match must not replace their artwork.
	exact map[*Card]bool
}

// live yields cards that are still in the deck and eligible for linking.
// Reversible cards carry their own artwork and are never relinked.
func (r *reconciler) live() []*Card {
	out := make([]*Card, 0, len(r.cards))
	for _, c := range r.cards {
		if r.dropped[c] || c.Origin == OriginReversible {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *reconciler) linkFlat(rec scryfall.Card) {
	url := rec.ImageURIs.URL(r.format)
	for _, c := range r.live() {
		if c.HasPrinting() {
			if samePrinting(c, rec) {
				c.ImageURL = url
			}
			continue
		}
		r.linkByName(c, rec.Name, url)
	}
}

// linkByName links a name-only card whose name equals target, or failing that
// is contained in it. Containment never overrides an exact link, so "Island"
// keeps its own artwork when "Snow-Covered Island" resolves later.
func (r *reconciler) linkByName(c *Card, target, url string) {
	switch {
	case strings.EqualFold(c.Name, target):
		c.ImageURL = url
		r.exact[c] = true
	case containsFold(target, c.Name) && !r.exact[c]:
		c.ImageURL = url
	}
}

func (r *reconciler) linkFaces(rec scryfall.Card) {
	origin := r.origin(rec)
	claimed := -1
	if origin != nil && rec.IsDoubleSided() {
		claimed = claimedFace(origin, rec.CardFaces)
	}

	for i, face := range rec.CardFaces {
		url := face.ImageURIs.URL(r.format)
		if url == "" {
			url = rec.ImageURIs.URL(r.format)
		}

		switch {
		case rec.IsReversible():
			if origin != nil {
				r.addReversible(origin, face, url)
				continue
			}
		case i == claimed:
			origin.ImageURL = url
			if !origin.HasPrinting() && strings.EqualFold(origin.Name, face.Name) {
				r.exact[origin] = true
			}
		case rec.IsDoubleSided() && origin != nil && !r.represented(face.Name):
			r.cards = append(r.cards, &Card{
				Line: decklist.Line{
					Quantity:        origin.Quantity,
					Name:            face.Name,
					SetCode:         origin.SetCode,
					CollectorNumber: origin.CollectorNumber,
				},
				ImageURL: url,
				Origin:   OriginDerived,
			})
			continue
		}

		for _, c := range r.live() {
			if !c.HasPrinting() {
				r.linkByName(c, face.Name, url)
				continue
			}
			if strings.EqualFold(c.Name, face.Name) && samePrinting(c, rec) {
				c.ImageURL = url
			}
		}
	}
}

// addReversible synthesizes the card for one reversible face unless it already
// exists, dropping the source card and any card listed under the face name.
func (r *reconciler) addReversible(origin *Card, face scryfall.CardFace, url string) {
	title := face.FlavorName
	if title == "" {
		title = face.Name
	}
	name := ReversiblePrefix + title
	for _, c := range r.cards {
		if !r.dropped[c] && c.Origin == OriginReversible && c.Name == name {
			return
		}
	}

	for _, c := range r.cards {
		if c.Origin != OriginReversible && (c == origin || c.Name == face.Name) {
			r.dropped[c] = true
		}
	}
	r.cards = append(r.cards, &Card{
		Line: decklist.Line{
			Quantity:        origin.Quantity,
			Name:            name,
			SetCode:         origin.SetCode,
			CollectorNumber: origin.CollectorNumber,
		},
		ImageURL: url,
		Origin:   OriginReversible,
	})
}

// origin returns the first decklist card that requested rec.
func (r *reconciler) origin(rec scryfall.Card) *Card {
	for _, c := range r.live() {
		if c.Origin == OriginSource && matchesRecord(c, rec) {
			return c
		}
	}
	return nil
}

func (r *reconciler) represented(faceName string) bool {
	for _, c := range r.live() {
		if strings.EqualFold(c.Name, faceName) {
			return true
		}
	}
	return false
}

// claimedFace returns the face index the origin card stands for: the face it
// names exactly, else one whose name contains it, else the front face.
func claimedFace(origin *Card, faces []scryfall.CardFace) int {
	for i, face := range faces {
		if strings.EqualFold(face.Name, origin.Name) {
			return i
		}
	}
	for i, face := range faces {
		if containsFold(face.Name, origin.Name) {
			return i
		}
	}
	return 0
}

func matchesRecord(c *Card, rec scryfall.Card) bool {
	if !c.HasPrinting() {
		return containsFold(rec.Name, c.Name)
	}
	return samePrinting(c, rec)
}

func samePrinting(c *Card, rec scryfall.Card) bool {
	return c.CollectorNumber == rec.CollectorNumber && strings.EqualFold(c.SetCode, rec.Set)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
