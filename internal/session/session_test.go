package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/transcript"
)

// countingService answers 200 with message and counts requests.
func countingService(t *testing.T, message string) (*backend.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL), &calls
}

func TestSubmitDraft_EmptyNameMakesNoRequest(t *testing.T) {
	client, calls := countingService(t, "created")
	s := New(client)
	s.SetName("")
	s.AddActivity("chargeCard")
	before := s.Draft().Snapshot()

	_, err := s.SubmitDraft(context.Background())

	var ve *draft.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "name", ve.Field)
	require.Equal(t, before, s.Draft().Snapshot())
	require.Zero(t, calls.Load())
}

func TestSubmitDraft_NoActivitiesMakesNoRequest(t *testing.T) {
	client, calls := countingService(t, "created")
	s := New(client)
	s.SetName("OrderProcessor")

	_, err := s.SubmitDraft(context.Background())

	var ve *draft.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "activities", ve.Field)
	require.Zero(t, calls.Load())
}

func TestSubmitDraft_SendsAndKeepsDraft(t *testing.T) {
	client, calls := countingService(t, "created")
	s := New(client)
	s.SetName("OrderProcessor")
	s.AddActivity("chargeCard")
	s.AddActivity("sendEmail")

	out, err := s.SubmitDraft(context.Background())

	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, "created", out.Response.Message)
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, 2, s.Draft().Len(), "a successful submission does not reset the draft")
	require.Zero(t, s.Transcript().Len())
}

func TestSubmitPrompt_AppendsExchange(t *testing.T) {
	client, _ := countingService(t, "Workflow created")
	s := New(client)

	_, ok := s.SubmitPrompt(context.Background(), "Create OrderProcessor")

	require.True(t, ok)
	msgs := s.Transcript().Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, transcript.SenderUser, msgs[0].Sender)
	require.Equal(t, "Workflow created", msgs[1].Text)
	require.False(t, s.Busy())
	require.Zero(t, s.Draft().Len(), "prompts never touch the draft")
}

func TestBeginPrompt_ExposesBusy(t *testing.T) {
	client, _ := countingService(t, "ok")
	s := New(client)

	ex, ok := s.BeginPrompt("hello")
	require.True(t, ok)
	require.True(t, s.Busy())

	ex.Resolve(context.Background())
	require.False(t, s.Busy())
}

func TestAddActivityAndReset(t *testing.T) {
	client, _ := countingService(t, "ok")
	n := 0
	s := New(client, WithDraftOptions(draft.WithIDGenerator(func() string {
		n++
		return string(rune('a' + n))
	})))
	s.SetName("w")

	_, ok := s.AddActivity("")
	require.False(t, ok)
	a, ok := s.AddActivity("chargeCard")
	require.True(t, ok)
	require.Equal(t, "b", a.ID)
	require.Equal(t, draft.DefaultTimeoutSeconds, a.TimeoutSeconds)

	s.ResetDraft()
	require.Zero(t, s.Draft().Len())
	require.Empty(t, s.Draft().Name())
}
