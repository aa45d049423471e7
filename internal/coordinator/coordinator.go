// Package coordinator drives requests to the workflow generation service and
// folds their outcomes back into session state.
//
// Two request kinds exist. A prompt exchange appends the user's text to the
// transcript, asks the service to interpret it and appends exactly one bot
// reply; at most one exchange is in flight per coordinator. A draft submission
// sends the assembled workflow and reports the result to the caller without
// touching the transcript.
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/metrics"
	"github.com/zjrosen/flowdraft/internal/transcript"
)

// User-visible notices for failed requests.
const (
	NoticeRejected    = "❌ Failed to create workflow. Please try again."
	NoticeUnreachable = "⚠️ Server unreachable. Try again later."
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 60 * time.Second

// Backend is the subset of the service client the coordinator needs.
type Backend interface {
	SubmitPrompt(ctx context.Context, prompt string) (*backend.GenerateResponse, error)
	SubmitWorkflow(ctx context.Context, wf draft.Workflow) (*backend.GenerateResponse, error)
}

// OutcomeKind classifies how a request ended.
type OutcomeKind int

const (
	// OutcomeReply means the service answered 200 with a decodable body.
	OutcomeReply OutcomeKind = iota
	// OutcomeRejected means the service answered with a non-200 status.
	OutcomeRejected
	// OutcomeUnreachable means no usable response was obtained.
	OutcomeUnreachable
)

// String returns the metrics label for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReply:
		return metrics.OutcomeOK
	case OutcomeRejected:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeUnreachable
	}
}

// Coordinator owns the busy flag of one session.
type Coordinator struct {
	backend    Backend
	transcript *transcript.Store
	busy       atomic.Bool
	timeout    time.Duration
	tracer     trace.Tracer
	metrics    *metrics.Recorder
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = d
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = t
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Coordinator) {
		c.metrics = r
	}
}

// New creates a coordinator that appends prompt exchanges to ts.
func New(b Backend, ts *transcript.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		backend:    b,
		transcript: ts,
		timeout:    DefaultTimeout,
		tracer:     noop.NewTracerProvider().Tracer("flowdraft/coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a prompt exchange is awaiting the service.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

func (c *Coordinator) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classify maps a client error to an outcome kind and its notice.
func classify(err error) (OutcomeKind, string) {
	switch {
	case err == nil:
		return OutcomeReply, ""
	case backend.IsStatusError(err):
		return OutcomeRejected, NoticeRejected
	default:
		return OutcomeUnreachable, NoticeUnreachable
	}
}

// PromptOutcome is the result of a resolved prompt exchange.
type PromptOutcome struct {
	Kind OutcomeKind
	// Prompt is the user message appended when the exchange began.
	Prompt transcript.Message
	// Reply is the bot message appended when the exchange resolved.
	Reply transcript.Message
	// Response is set for OutcomeReply.
	Response *backend.GenerateResponse
	// Err is the client error for the failure kinds.
	Err error
}

// Exchange is a prompt exchange that has been accepted but not yet resolved.
// Every Exchange must be resolved exactly once; until then the coordinator
// stays busy.
type Exchange struct {
	c      *Coordinator
	text   string
	prompt transcript.Message

	once    sync.Once
	outcome PromptOutcome
}

// Prompt returns the user message appended by BeginPrompt.
func (e *Exchange) Prompt() transcript.Message {
	return e.prompt
}

// BeginPrompt starts a prompt exchange. Empty text, or an exchange already in
// flight, is ignored and reported as false with no state change. On true the
// user message is already in the transcript and the caller should clear its
// prompt input, then call Resolve.
func (c *Coordinator) BeginPrompt(text string) (*Exchange, bool) {
	if text == "" {
		c.metrics.PromptRejected("empty")
		return nil, false
	}
	if !c.busy.CompareAndSwap(false, true) {
		log.Debug(log.CatChat, "Prompt ignored, exchange in flight")
		c.metrics.PromptRejected("busy")
		return nil, false
	}
	c.metrics.PromptStarted()

	msg := c.transcript.Append(transcript.SenderUser, text)
	return &Exchange{c: c, text: text, prompt: msg}, true
}

// Resolve sends the prompt, appends the bot reply and releases the busy flag.
// It never returns an error; failures are expressed in the outcome and in the
// appended reply. Later calls return the first outcome without doing I/O.
func (e *Exchange) Resolve(ctx context.Context) PromptOutcome {
	e.once.Do(func() {
		e.outcome = e.c.resolve(ctx, e)
	})
	return e.outcome
}

func (c *Coordinator) resolve(ctx context.Context, e *Exchange) PromptOutcome {
	defer func() {
		c.busy.Store(false)
		c.metrics.PromptFinished()
	}()

	ctx, span := c.tracer.Start(ctx, "coordinator.submit_prompt",
		trace.WithAttributes(attribute.Int("prompt.length", len(e.text))))
	defer span.End()

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.backend.SubmitPrompt(reqCtx, e.text)
	kind, notice := classify(err)
	c.metrics.ObserveRequest(metrics.KindPrompt, kind.String(), time.Since(start))

	out := PromptOutcome{Kind: kind, Prompt: e.prompt, Response: resp, Err: err}
	switch kind {
	case OutcomeReply:
		span.SetStatus(codes.Ok, "")
		out.Reply = c.transcript.Append(transcript.SenderBot, resp.Message)
	case OutcomeRejected:
		log.Warn(log.CatChat, "Prompt rejected by service", "error", err)
		span.SetStatus(codes.Error, err.Error())
		out.Reply = c.transcript.Append(transcript.SenderBot, notice)
	default:
		log.ErrorErr(log.CatChat, "Prompt request failed", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		out.Reply = c.transcript.Append(transcript.SenderBot, notice)
	}
	span.SetAttributes(attribute.String("outcome", kind.String()))
	return out
}

// SubmitPrompt runs a complete prompt exchange. ok is false when the prompt
// was ignored (empty or another exchange in flight).
func (c *Coordinator) SubmitPrompt(ctx context.Context, text string) (PromptOutcome, bool) {
	ex, ok := c.BeginPrompt(text)
	if !ok {
		return PromptOutcome{}, false
	}
	return ex.Resolve(ctx), true
}

// DraftOutcome is the result of a draft submission.
type DraftOutcome struct {
	Kind     OutcomeKind
	Response *backend.GenerateResponse
	Err      error
	// Notice is the user-visible failure text; empty on success.
	Notice string
}

// OK reports whether the service accepted the draft.
func (o DraftOutcome) OK() bool {
	return o.Kind == OutcomeReply
}

// ServiceFailed reports whether the service answered but reported that it
// could not generate the workflow.
func (o DraftOutcome) ServiceFailed() bool {
	return o.Response != nil && o.Response.Status == backend.StatusFailed
}

// SubmitDraft sends wf to the service. The caller is responsible for
// validating wf first. Draft submissions are not serialized against each other
// or against prompt exchanges, and never modify the transcript.
func (c *Coordinator) SubmitDraft(ctx context.Context, wf draft.Workflow) DraftOutcome {
	ctx, span := c.tracer.Start(ctx, "coordinator.submit_draft",
		trace.WithAttributes(
			attribute.String("workflow.name", wf.Name),
			attribute.Int("workflow.activities", len(wf.Activities)),
		))
	defer span.End()

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.backend.SubmitWorkflow(reqCtx, wf)
	kind, notice := classify(err)
	c.metrics.ObserveRequest(metrics.KindDraft, kind.String(), time.Since(start))
	span.SetAttributes(attribute.String("outcome", kind.String()))

	if err != nil {
		log.ErrorErr(log.CatDraft, "Workflow submission failed", err,
			"workflow", wf.Name, "outcome", kind.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftOutcome{Kind: kind, Err: err, Notice: notice}
	}

	log.Info(log.CatDraft, "Workflow submitted",
		"workflow", wf.Name,
		"activities", len(wf.Activities),
		"status", resp.Status,
		"message", resp.Message)
	span.SetStatus(codes.Ok, "")
	return DraftOutcome{Kind: kind, Response: resp}
}
