package scryfall

import "strings"

// Layouts with special handling during canonicalization.
const (
	LayoutReversible = "reversible_card"
	LayoutTransform  = "transform"
	LayoutModalDFC   = "modal_dfc"
	LayoutDFCToken   = "double_faced_token"
	LayoutBattle     = "battle"
)

// Identifier is one lookup key in a collection request. Either Name or
// Set+CollectorNumber is populated.
type Identifier struct {
	Name            string `json:"name,omitempty"`
	Set             string `json:"set,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
}

// HasPrinting reports whether the identifier targets a specific printing.
func (id Identifier) HasPrinting() bool {
	return id.Set != "" && id.CollectorNumber != ""
}

// String renders the identifier the way it is reported in a manifest.
func (id Identifier) String() string {
	if id.HasPrinting() {
		return strings.ToUpper(id.Set) + " " + id.CollectorNumber
	}
	return id.Name
}

// ImageURIs holds the artwork variants Scryfall serves for a card or face.
type ImageURIs struct {
	Small      string `json:"small,omitempty"`
	Normal     string `json:"normal,omitempty"`
	Large      string `json:"large,omitempty"`
	PNG        string `json:"png,omitempty"`
	ArtCrop    string `json:"art_crop,omitempty"`
	BorderCrop string `json:"border_crop,omitempty"`
}

// URL returns the variant named by format, falling back to the largest
// available image when that variant is missing.
func (u *ImageURIs) URL(format string) string {
	if u == nil {
		return ""
	}
	switch strings.ToLower(format) {
	case "small":
		if u.Small != "" {
			return u.Small
		}
	case "normal":
		if u.Normal != "" {
			return u.Normal
		}
	case "large":
		if u.Large != "" {
			return u.Large
		}
	case "art_crop":
		if u.ArtCrop != "" {
			return u.ArtCrop
		}
	case "border_crop":
		if u.BorderCrop != "" {
			return u.BorderCrop
		}
	}
	for _, candidate := range []string{u.PNG, u.Large, u.Normal, u.Small} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// CardFace is one side of a multi-faced card.
type CardFace struct {
	Name       string     `json:"name"`
	FlavorName string     `json:"flavor_name,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// Card is the subset of a Scryfall card object the deck pipeline relies on.
type Card struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Set             string     `json:"set"`
	CollectorNumber string     `json:"collector_number"`
	Layout          string     `json:"layout"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	CardFaces       []CardFace `json:"card_faces,omitempty"`
}

// HasFaceImages reports whether each face carries its own artwork. Split,
// adventure and flip cards have faces but share one image.
func (c Card) HasFaceImages() bool {
	if len(c.CardFaces) == 0 {
		return false
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs == nil {
			return false
		}
	}
	return true
}

// IsReversible reports whether both faces are alternate versions of one card.
func (c Card) IsReversible() bool {
	return c.Layout == LayoutReversible
}

// IsDoubleSided reports whether each face is printed as its own side and
// should count as its own deck line.
func (c Card) IsDoubleSided() bool {
	switch c.Layout {
	case LayoutTransform, LayoutModalDFC, LayoutDFCToken, LayoutBattle:
		return true
	}
	return false
}

// CollectionResponse is one batch response from /cards/collection.
type CollectionResponse struct {
	Object   string       `json:"object"`
	NotFound []Identifier `json:"not_found"`
	Data     []Card       `json:"data"`
}

// apiError is the error object Scryfall returns with non-2xx statuses.
type apiError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}
