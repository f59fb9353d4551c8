// Package tokens copies values out of JSON responses into global headers,
// driven by user-authored rules.
package tokens

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"apidesk/internal/headers"
	"apidesk/internal/model"
	"apidesk/internal/storage"
)

const storageKey = "apidesk_token_rules"

// MatchPath reports whether apiPath matches pattern. A blank pattern
// matches everything and "*" matches any run of characters, "/" included.
func MatchPath(apiPath, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || pattern == apiPath {
		return true
	}
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(apiPath)
}

// Lookup walks body along a dot-separated path. Numeric segments index
// arrays. A missing or null intermediate yields false.
func Lookup(body []byte, path string) (gjson.Result, bool) {
	if path == "" || !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	segs := strings.Split(path, ".")
	for i, s := range segs {
		segs[i] = gjson.Escape(s)
	}
	r := gjson.GetBytes(body, strings.Join(segs, "."))
	if !r.Exists() || r.Type == gjson.Null {
		return gjson.Result{}, false
	}
	return r, true
}

// Update is one header assignment produced by a matching rule.
type Update struct {
	Key   string
	Value string
}

// Extract evaluates rules in order against a JSON response of the endpoint
// at apiPath. Only active rules whose value is a non-empty string produce
// an update.
func Extract(body []byte, apiPath string, rules []model.TokenRule) []Update {
	var out []Update
	for _, rule := range rules {
		if !rule.Active() || !MatchPath(apiPath, rule.PathPattern) {
			continue
		}
		v, ok := Lookup(body, rule.JSONPath)
		if !ok || v.Type != gjson.String || v.Str == "" {
			continue
		}
		out = append(out, Update{Key: rule.HeaderKey, Value: rule.Prefix + v.Str})
	}
	return out
}

// Apply upserts updates into list in order.
func Apply(list []model.Header, updates []Update) []model.Header {
	for _, u := range updates {
		list = headers.Upsert(list, u.Key, u.Value)
	}
	return list
}

// Store persists rules in durable storage.
type Store struct {
	kv  storage.Store
	log zerolog.Logger
}

func NewStore(kv storage.Store, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func (s *Store) Load() []model.TokenRule {
	var rules []model.TokenRule
	if !storage.GetJSON(s.kv, s.log, storageKey, &rules) {
		return nil
	}
	return rules
}

// Save drops rules with neither a JSON path nor a header key and refuses
// the whole list when any header key is invalid.
func (s *Store) Save(rules []model.TokenRule) ([]model.TokenRule, error) {
	clean := []model.TokenRule{}
	var bad []string
	for _, r := range rules {
		r.JSONPath = strings.TrimSpace(r.JSONPath)
		r.HeaderKey = strings.TrimSpace(r.HeaderKey)
		if r.JSONPath == "" && r.HeaderKey == "" {
			continue
		}
		if r.HeaderKey != "" && !headers.ValidKey(r.HeaderKey) {
			bad = append(bad, r.HeaderKey)
		}
		clean = append(clean, r)
	}
	if len(bad) > 0 {
		return nil, &headers.InvalidKeysError{Keys: bad}
	}
	if err := storage.PutJSON(s.kv, s.log, storageKey, clean); err != nil {
		return clean, fmt.Errorf("save token rules: %w", err)
	}
	return clean, nil
}

func (s *Store) Clear() error {
	return storage.PutJSON(s.kv, s.log, storageKey, []model.TokenRule{})
}
