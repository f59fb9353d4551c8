// Package headers manages the user's global request headers.
package headers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

const storageKey = "apidesk_global_headers"

var sensitiveKeys = []string{"authorization", "token", "api-key", "apikey", "secret", "password"}

type InvalidKeysError struct {
	Keys []string
}

func (e *InvalidKeysError) Error() string {
	return fmt.Sprintf("invalid header key(s): %s (only ASCII token characters are allowed)", strings.Join(e.Keys, ", "))
}

// ValidKey reports whether k is an HTTP header field name.
func ValidKey(k string) bool {
	return k != "" && httpguts.ValidHeaderFieldName(k)
}

// EncodeValue percent-encodes values containing non-ASCII characters so
// that they survive transmission. ASCII values are returned unchanged.
func EncodeValue(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] >= utf8.RuneSelf {
			return EscapeComponent(v)
		}
	}
	return v
}

// EscapeComponent escapes s like JavaScript's encodeURIComponent.
func EscapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// Upsert replaces the value of the header with the same key, or appends it.
func Upsert(list []model.Header, key, value string) []model.Header {
	out := append([]model.Header(nil), list...)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, model.Header{Key: key, Value: value})
}

// Active returns the headers to send: both key and value set, a valid key
// and a transmittable value, with the value encoded.
func Active(list []model.Header) []model.Header {
	var out []model.Header
	for _, h := range list {
		if h.Key == "" || h.Value == "" || !ValidKey(h.Key) {
			continue
		}
		v := EncodeValue(h.Value)
		if !httpguts.ValidHeaderFieldValue(v) {
			continue
		}
		out = append(out, model.Header{Key: h.Key, Value: v})
	}
	return out
}

// Mask hides most of a sensitive header value for display.
func Mask(key, value string) string {
	lk := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lk, s) {
			r := []rune(value)
			if len(r) > 10 {
				return string(r[:6]) + "****" + string(r[len(r)-4:])
			}
			return "****"
		}
	}
	return value
}

// Normalize drops blank rows and rejects the list when any key is invalid.
func Normalize(list []model.Header) ([]model.Header, error) {
	var out []model.Header
	var bad []string
	for _, h := range list {
		h.Key = strings.TrimSpace(h.Key)
		if h.Key == "" && h.Value == "" {
			continue
		}
		if h.Key != "" && !ValidKey(h.Key) {
			bad = append(bad, h.Key)
		}
		out = append(out, h)
	}
	if len(bad) > 0 {
		return nil, &InvalidKeysError{Keys: bad}
	}
	return out, nil
}

// Store persists the global header list in durable storage.
type Store struct {
	kv       storage.Store
	log      zerolog.Logger
	defaults []model.Header
}

// NewStore returns a store that falls back to defaults until a list has
// been saved. Defaults with an invalid key are dropped with a warning, the
// same keys Save would reject.
func NewStore(kv storage.Store, log zerolog.Logger, defaults []model.Header) *Store {
	var keep []model.Header
	for _, h := range defaults {
		h.Key = strings.TrimSpace(h.Key)
		if h.Key == "" && h.Value == "" {
			continue
		}
		if !ValidKey(h.Key) {
			log.Warn().Str("key", h.Key).Msg("ignoring configured global header with invalid key")
			continue
		}
		keep = append(keep, h)
	}
	return &Store{kv: kv, log: log, defaults: keep}
}

func (s *Store) Load() []model.Header {
	var list []model.Header
	if storage.GetJSON(s.kv, s.log, storageKey, &list) {
		return list
	}
	return append([]model.Header(nil), s.defaults...)
}

// Save validates and persists list, returning what was stored.
func (s *Store) Save(list []model.Header) ([]model.Header, error) {
	clean, err := Normalize(list)
	if err != nil {
		return nil, err
	}
	if clean == nil {
		clean = []model.Header{}
	}
	if err := storage.PutJSON(s.kv, s.log, storageKey, clean); err != nil {
		return clean, err
	}
	return clean, nil
}

// Clear stores an empty list, which also overrides configured defaults.
func (s *Store) Clear() error {
	return storage.PutJSON(s.kv, s.log, storageKey, []model.Header{})
}
