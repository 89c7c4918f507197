// Package editor models the dashboard edit session for one content
// collection: at most one inline form (create or edit) is open at a time,
// and a rejected save keeps the form open with the error surfaced.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type State string

const (
	StateIdle     State = "idle"
	StateCreating State = "creating"
	StateEditing  State = "editing"
)

// ErrFormOpen is returned when a create or edit is started while another
// form is already open. The caller keeps its current state.
var ErrFormOpen = errors.New("another form is open")

// SaveFunc persists the submitted field values. The error comes back to the
// session untouched so the editor can read it.
type SaveFunc func(ctx context.Context, fields map[string]string) error

// Session tracks one collection's edit state. It is not safe for concurrent
// use; the dashboard serialises interactions per collection.
type Session struct {
	required []string

	state     State
	editingID string
	fields    map[string]string
	lastErr   error
}

// NewSession creates an idle session. required lists the field names that
// must be non-empty before Submit will call the store.
func NewSession(required ...string) *Session {
	return &Session{
		required: required,
		state:    StateIdle,
		fields:   map[string]string{},
	}
}

func (s *Session) State() State      { return s.state }
func (s *Session) EditingID() string { return s.editingID }
func (s *Session) Err() error        { return s.lastErr }

// Fields returns a copy of the current form values.
func (s *Session) Fields() map[string]string {
	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

func (s *Session) SetField(name, value string) {
	if s.state == StateIdle {
		return
	}
	s.fields[name] = value
}

// StartCreate opens a blank create form. Rejected while any form is open.
func (s *Session) StartCreate() error {
	if s.state != StateIdle {
		return ErrFormOpen
	}
	s.state = StateCreating
	s.fields = map[string]string{}
	s.lastErr = nil
	return nil
}

// StartEdit opens the inline edit form for id, preloaded with the entity's
// current values. Rejected while any form is open.
func (s *Session) StartEdit(id string, current map[string]string) error {
	if s.state != StateIdle {
		return ErrFormOpen
	}
	s.state = StateEditing
	s.editingID = id
	s.fields = make(map[string]string, len(current))
	for k, v := range current {
		s.fields[k] = v
	}
	s.lastErr = nil
	return nil
}

// Cancel discards the open form without touching the store.
func (s *Session) Cancel() {
	s.state = StateIdle
	s.editingID = ""
	s.fields = map[string]string{}
	s.lastErr = nil
}

// Submit validates required fields and hands the values to save. On any
// failure the form stays open and the error is kept for display; on success
// the session returns to idle and the caller refreshes its list from the
// store response.
func (s *Session) Submit(ctx context.Context, save SaveFunc) error {
	if s.state == StateIdle {
		return errors.New("no form open")
	}
	for _, name := range s.required {
		if strings.TrimSpace(s.fields[name]) == "" {
			s.lastErr = fmt.Errorf("%s is required", name)
			return s.lastErr
		}
	}
	if err := save(ctx, s.Fields()); err != nil {
		s.lastErr = err
		return err
	}
	s.Cancel()
	return nil
}
