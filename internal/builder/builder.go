// Package builder runs the deck pipeline: parse, resolve, canonicalize,
// write the manifest, download artwork and archive the result.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"deckbox/internal/archive"
	"deckbox/internal/artwork"
	"deckbox/internal/deck"
	"deckbox/internal/decklist"
	"deckbox/internal/manifest"
	"deckbox/internal/scryfall"
)

// ErrFileSystem marks local I/O failures: directories, manifest, artwork, archive.
var ErrFileSystem = errors.New("file system error")

// CardsDir is the deck subdirectory holding artwork.
const CardsDir = "cards"

// Resolver looks identifiers up in the card database.
type Resolver interface {
	FetchCollection(ctx context.Context, ids []scryfall.Identifier) ([]scryfall.CollectionResponse, error)
}

// ImageFetcher downloads artwork for resolved cards.
type ImageFetcher interface {
	FetchDeck(ctx context.Context, dir string, cards []*deck.Card, journal artwork.Journal) (int, error)
}

// Request is one deck build request.
type Request struct {
	Decklist string
	Name     string
}

// Result summarizes a finished build.
type Result struct {
	ID           string
	Name         string
	DeckSize     int
	Errors       int
	Images       int
	ManifestPath string
	DumpPath     string
	ArchivePath  string
	Cards        []*deck.Card
}

// Options configures a Builder.
type Options struct {
	OutputRoot    string
	ImageFormat   string
	MaxNameLength int
	Grammar       decklist.Grammar
	Resolver      Resolver
	Fetcher       ImageFetcher
	Now           func() time.Time
}

// Builder turns decklists into packaged decks.
type Builder struct {
	root          string
	format        string
	maxNameLength int
	parser        *decklist.Parser
	resolver      Resolver
	fetcher       ImageFetcher
	now           func() time.Time
}

// New creates a builder.
func New(opts Options) *Builder {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	format := opts.ImageFormat
	if format == "" {
		format = "png"
	}
	return &Builder{
		root:          opts.OutputRoot,
		format:        format,
		maxNameLength: opts.MaxNameLength,
		parser:        decklist.NewParser(opts.Grammar),
		resolver:      opts.Resolver,
		fetcher:       opts.Fetcher,
		now:           now,
	}
}

// Build runs the full pipeline for one deck. Any returned error aborts the
// build and leaves partial output on disk.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	id := uuid.NewString()
	name := deck.ResolveName(req.Name, b.maxNameLength, b.now())
	if name != strings.TrimSpace(req.Name) {
		log.Printf("build %s: deck name %q replaced with %q", id, req.Name, name)
	}

	lines, err := b.parser.Parse(req.Decklist)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: decklist is empty", decklist.ErrParse)
	}

	d := deck.New(name)
	d.Populate(lines)
	log.Printf("build %s: deck %q has %d lines, %d cards", id, name, len(d.Cards), d.Size)

	deckDir := filepath.Join(b.root, name)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		return nil, fsErr("create deck directory", err)
	}

	responses, err := b.resolver.FetchCollection(ctx, d.Identifiers())
	if err != nil {
		return nil, err
	}
	d.DumpPath = filepath.Join(deckDir, name+"-responses.json")
	if err := scryfall.SaveResponses(d.DumpPath, responses); err != nil {
		return nil, fsErr("save responses", err)
	}

	d.Canonicalize(scryfall.Records(responses), b.format)

	manifestPath := filepath.Join(deckDir, name+"-manifest.txt")
	mw, err := manifest.Create(manifestPath)
	if err != nil {
		return nil, fsErr("write manifest", err)
	}
	defer mw.Close()
	if err := mw.WriteDeck(d); err != nil {
		return nil, fsErr("write manifest", err)
	}

	notFound := make(map[scryfall.Identifier]bool)
	for _, missing := range scryfall.NotFound(responses) {
		notFound[missing] = true
		if err := mw.AddError("Card not found: " + missing.String()); err != nil {
			return nil, fsErr("write manifest", err)
		}
	}

	// Cards already reported as not found get no second missing-artwork entry.
	fetchable := make([]*deck.Card, 0, len(d.Cards))
	for _, c := range d.Cards {
		if c.Origin == deck.OriginSource && notFound[deck.IdentifierFor(c)] {
			continue
		}
		fetchable = append(fetchable, c)
	}

	images, err := b.fetcher.FetchDeck(ctx, filepath.Join(deckDir, CardsDir), fetchable, mw)
	d.Errors = mw.Errors()
	if err != nil {
		return nil, fsErr("download artwork", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fsErr("write manifest", err)
	}

	archivePath, err := archive.Create(b.root, name)
	if err != nil {
		return nil, fsErr("archive deck", err)
	}

	log.Printf("build %s: deck %q packaged (%d cards, %d images, %d errors)", id, name, d.Size, images, d.Errors)
	return &Result{
		ID:           id,
		Name:         name,
		DeckSize:     d.Size,
		Errors:       d.Errors,
		Images:       images,
		ManifestPath: manifestPath,
		DumpPath:     d.DumpPath,
		ArchivePath:  archivePath,
		Cards:        d.Cards,
	}, nil
}

func fsErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFileSystem, op, err)
}

// Category names the failure class of a build error.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, decklist.ErrParse):
		return "parse"
	case errors.Is(err, scryfall.ErrDecode):
		return "decode"
	case errors.Is(err, scryfall.ErrAPI):
		return "api"
	case errors.Is(err, ErrFileSystem):
		return "filesystem"
	default:
		return "unknown"
	}
}
