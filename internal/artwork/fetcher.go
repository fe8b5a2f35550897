package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"deckbox/internal/deck"
)

// AltPrefix is prepended to a file name that is already taken.
const AltPrefix = "ALT"

const defaultExt = ".png"

// ErrDownload marks failures talking to the image host. Callers still treat
// them like any other artwork failure.
var ErrDownload = errors.New("image download failed")

// HTTPDoer describes the HTTP client used to download images.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Journal receives non-fatal resolution warnings.
type Journal interface {
	AddError(msg string) error
}

// Options configures a Fetcher.
type Options struct {
	HTTPClient HTTPDoer
	// RequestsPerSecond paces image requests; zero or less disables pacing.
	RequestsPerSecond float64
	UserAgent         string
}

// Fetcher downloads card artwork into a deck's cards directory.
type Fetcher struct {
	client    HTTPDoer
	limiter   *rate.Limiter
	userAgent string
}

// NewFetcher creates a fetcher.
func NewFetcher(opts Options) *Fetcher {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
	}
}

// FetchDeck writes Quantity image files for every card with artwork and
// reports cards without artwork to journal. It stops at the first failure and
// returns the number of files written.
func (f *Fetcher) FetchDeck(ctx context.Context, dir string, cards []*deck.Card, journal Journal) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create cards directory: %w", err)
	}

	written := 0
	for _, c := range cards {
		if c.ImageURL == "" {
			if err := journal.AddError("No artwork found for " + c.Label()); err != nil {
				return written, err
			}
			continue
		}

		n, err := f.fetchCard(ctx, dir, c)
		written += n
		if err != nil {
			return written, fmt.Errorf("%s: %w", c.Label(), err)
		}
	}
	return written, nil
}

// fetchCard downloads the artwork once and copies it for the remaining copies.
func (f *Fetcher) fetchCard(ctx context.Context, dir string, c *deck.Card) (int, error) {
	ext := Extension(c.ImageURL)
	first := ""
	for seq := 1; seq <= c.Quantity; seq++ {
		target, err := TargetPath(dir, c.Name, seq, ext)
		if err != nil {
			return seq - 1, err
		}
		if first == "" {
			if err := f.Download(ctx, c.ImageURL, target); err != nil {
				return seq - 1, err
			}
			first = target
			continue
		}
		if err := copyFile(first, target); err != nil {
			return seq - 1, fmt.Errorf("copy artwork: %w", err)
		}
	}
	log.Printf("artwork: saved %d x %s", c.Quantity, c.Name)
	return c.Quantity, nil
}

// Download fetches rawURL into the file at target.
func (f *Fetcher) Download(ctx context.Context, rawURL, target string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for download slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build image request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s returned status %d", ErrDownload, rawURL, resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write image file: %w", err)
	}
	return out.Close()
}

// TargetPath returns the first free path for copy seq of name: "<name>-<seq>",
// then "ALT-<name>-<seq>", then "ALT2-<name>-<seq>" and so on.
func TargetPath(dir, name string, seq int, ext string) (string, error) {
	base := fmt.Sprintf("%s-%d%s", SafeName(name), seq, ext)
	for attempt := 0; ; attempt++ {
		candidate := base
		switch attempt {
		case 0:
		case 1:
			candidate = AltPrefix + "-" + base
		default:
			candidate = fmt.Sprintf("%s%d-%s", AltPrefix, attempt, base)
		}
		p := filepath.Join(dir, candidate)
		_, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
	}
}

// SafeName replaces characters that cannot appear in a file name.
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
}

// Extension returns the file extension of the URL path, ".png" when absent.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return ext
	}
	return defaultExt
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
