// Package debugstore keeps the request tester's scratch state per endpoint
// for the current session.
package debugstore

import (
	"strings"

	"github.com/rs/zerolog"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

const keyPrefix = "apidesk_debug_"

type Store struct {
	kv  storage.Store
	log zerolog.Logger
}

// New wraps a session-scoped key-value store.
func New(kv storage.Store, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func Key(path, method string) string {
	return keyPrefix + strings.ToUpper(method) + "_" + path
}

// Get never fails: an absent or unreadable entry comes back empty.
func (s *Store) Get(path, method string) model.DebugEntry {
	var e model.DebugEntry
	if !storage.GetJSON(s.kv, s.log, Key(path, method), &e) {
		return model.NewDebugEntry()
	}
	if e.Params == nil {
		e.Params = map[string]string{}
	}
	return e
}

// Set overwrites the entry. Write failures are logged and dropped.
func (s *Store) Set(path, method string, e model.DebugEntry) {
	_ = storage.PutJSON(s.kv, s.log, Key(path, method), e)
}

func (s *Store) update(path, method string, fn func(*model.DebugEntry)) model.DebugEntry {
	e := s.Get(path, method)
	fn(&e)
	s.Set(path, method, e)
	return e
}

func (s *Store) SetParam(path, method, name, value string) model.DebugEntry {
	return s.update(path, method, func(e *model.DebugEntry) {
		e.Params[name] = value
	})
}

func (s *Store) SetBody(path, method, body string) model.DebugEntry {
	return s.update(path, method, func(e *model.DebugEntry) {
		e.Body = body
	})
}

func (s *Store) SetBodyFields(path, method string, fields map[string]string) model.DebugEntry {
	return s.update(path, method, func(e *model.DebugEntry) {
		e.BodyFields = fields
	})
}

func (s *Store) SetResponse(path, method string, r *model.ResponseSnapshot) model.DebugEntry {
	return s.update(path, method, func(e *model.DebugEntry) {
		e.Response = r
	})
}

// Reset forgets everything entered for one endpoint.
func (s *Store) Reset(path, method string) {
	if err := s.kv.Delete(Key(path, method)); err != nil {
		s.log.Warn().Err(err).Str("path", path).Str("method", method).Msg("could not reset debug entry")
	}
}
