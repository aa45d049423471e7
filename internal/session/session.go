// Package session ties one workflow draft, one chat transcript and one request
// coordinator together and exposes the intents every front end dispatches.
package session

import (
	"context"

	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/transcript"
)

// Session is the state of one interactive session.
type Session struct {
	draft       *draft.Store
	transcript  *transcript.Store
	coordinator *coordinator.Coordinator
}

// Option configures a Session.
type Option func(*config)

type config struct {
	draftOpts       []draft.Option
	coordinatorOpts []coordinator.Option
}

// WithDraftOptions passes options to the draft store.
func WithDraftOptions(opts ...draft.Option) Option {
	return func(c *config) {
		c.draftOpts = append(c.draftOpts, opts...)
	}
}

// WithCoordinatorOptions passes options to the coordinator.
func WithCoordinatorOptions(opts ...coordinator.Option) Option {
	return func(c *config) {
		c.coordinatorOpts = append(c.coordinatorOpts, opts...)
	}
}

// New creates an empty session talking to b.
func New(b coordinator.Backend, opts ...Option) *Session {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	ts := transcript.NewStore()
	return &Session{
		draft:       draft.NewStore(cfg.draftOpts...),
		transcript:  ts,
		coordinator: coordinator.New(b, ts, cfg.coordinatorOpts...),
	}
}

// Draft returns the draft store for reading.
func (s *Session) Draft() *draft.Store { return s.draft }

// Transcript returns the transcript store for reading.
func (s *Session) Transcript() *transcript.Store { return s.transcript }

// Busy reports whether a prompt exchange is in flight.
func (s *Session) Busy() bool { return s.coordinator.Busy() }

// SetName replaces the workflow name.
func (s *Session) SetName(name string) {
	s.draft.SetName(name)
}

// AddActivity appends an activity; false means the name was empty and nothing
// changed.
func (s *Session) AddActivity(name string) (draft.Activity, bool) {
	return s.draft.AddActivity(name)
}

// ResetDraft discards the current draft.
func (s *Session) ResetDraft() {
	s.draft.Reset()
}

// SubmitDraft validates the current draft and sends it. A draft without a name
// or without activities is returned as a *draft.ValidationError before any
// request is made; the draft itself is never modified.
func (s *Session) SubmitDraft(ctx context.Context) (coordinator.DraftOutcome, error) {
	wf := s.draft.Snapshot()
	if err := wf.Validate(); err != nil {
		log.Debug(log.CatDraft, "Draft not submittable", "error", err)
		return coordinator.DraftOutcome{}, err
	}
	return s.coordinator.SubmitDraft(ctx, wf), nil
}

// BeginPrompt starts a prompt exchange; see coordinator.Coordinator.BeginPrompt.
func (s *Session) BeginPrompt(text string) (*coordinator.Exchange, bool) {
	return s.coordinator.BeginPrompt(text)
}

// SubmitPrompt runs a complete prompt exchange.
func (s *Session) SubmitPrompt(ctx context.Context, text string) (coordinator.PromptOutcome, bool) {
	return s.coordinator.SubmitPrompt(ctx, text)
}
