// Package templates stores named request bodies per endpoint.
package templates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"apidesk/internal/storage"
)

const storageKey = "apidesk_body_templates"

var (
	ErrEmptyBody = errors.New("template body is empty")
	ErrNotFound  = errors.New("template not found")
)

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	kv  storage.Store
	log zerolog.Logger
	now func() time.Time
}

func NewStore(kv storage.Store, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log, now: time.Now}
}

func endpointKey(method, path string) string {
	return strings.ToUpper(method) + "_" + path
}

func (s *Store) all() map[string][]Template {
	m := map[string][]Template{}
	if !storage.GetJSON(s.kv, s.log, storageKey, &m) || m == nil {
		return map[string][]Template{}
	}
	return m
}

// List returns the templates saved for one endpoint, oldest first.
func (s *Store) List(method, path string) []Template {
	return s.all()[endpointKey(method, path)]
}

// Save adds a template. An empty name gets a timestamped default.
func (s *Store) Save(method, path, name, body string) (Template, error) {
	if strings.TrimSpace(body) == "" {
		return Template{}, ErrEmptyBody
	}
	now := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Template " + now.Format("2006-01-02 15:04:05")
	}
	t := Template{ID: uuid.NewString(), Name: name, Body: body, CreatedAt: now}

	m := s.all()
	k := endpointKey(method, path)
	m[k] = append(m[k], t)
	if err := storage.PutJSON(s.kv, s.log, storageKey, m); err != nil {
		return Template{}, fmt.Errorf("save template: %w", err)
	}
	return t, nil
}

func (s *Store) Get(method, path, id string) (Template, error) {
	for _, t := range s.List(method, path) {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, ErrNotFound
}

func (s *Store) Delete(method, path, id string) error {
	m := s.all()
	k := endpointKey(method, path)
	list := m[k]
	for i, t := range list {
		if t.ID != id {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(m, k)
		} else {
			m[k] = list
		}
		return storage.PutJSON(s.kv, s.log, storageKey, m)
	}
	return ErrNotFound
}
