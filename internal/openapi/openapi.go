package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"apidesk/internal/model"
)

const defaultTimeout = 10 * time.Second

var ErrNoSource = errors.New("no API document source configured")

// Loader fetches and parses API description documents.
type Loader struct {
	client *http.Client
	log    zerolog.Logger
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: defaultTimeout},
		log:    log,
	}
}

// Load fetches source and parses it. source is "@path", a plain file path
// or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (*model.Document, error) {
	raw, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(raw, l.log)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	doc.Source = strings.TrimPrefix(strings.TrimSpace(source), "@")
	return doc, nil
}

// Fetch returns the raw document bytes.
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoSource
	}
	if IsRemote(source) {
		return l.fetchURL(ctx, source)
	}

	path := strings.TrimPrefix(source, "@")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	l.log.Debug().Str("path", path).Int("bytes", len(b)).Msg("loaded document from file")
	return b, nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	l.log.Debug().Str("url", url).Int("bytes", len(b)).Msg("loaded document from url")
	return b, nil
}

func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Export writes the document exactly as it was loaded.
func Export(w io.Writer, doc *model.Document) error {
	if doc == nil || len(doc.Raw) == 0 {
		return errors.New("no document loaded")
	}
	_, err := w.Write(doc.Raw)
	return err
}
