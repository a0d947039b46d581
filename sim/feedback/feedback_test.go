package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/session"
	"github.com/eduwrench/simclient/sim/submit"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// recordingPoster keeps every body it is asked to post.
type recordingPoster struct {
	mu     sync.Mutex
	paths  []string
	bodies []any
	ids    []string
	err    error
}

func (p *recordingPoster) Post(_ context.Context, path string, body any, requestID string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	p.bodies = append(p.bodies, body)
	p.ids = append(p.ids, requestID)
	return nil, p.err
}

func sessions(t *testing.T, email string) *session.Service {
	t.Helper()
	svc, err := session.NewService(nil)
	require.NoError(t, err)
	if email != "" {
		require.NoError(t, svc.Login(email))
	}
	return svc
}

func completeForm() Form {
	return Form{Key: "io_operations", Useful: "Very useful", Quality: "Good", Comments: "  more examples please \n"}
}

func TestSender_SignedIn_PostsAttributedAnswers(t *testing.T) {
	// GIVEN a signed-in learner and a complete form
	poster := &recordingPoster{}
	s := NewSender(DefaultQuestions(), sessions(t, "ada@example.edu"), poster)

	// WHEN submitted
	id, err := s.Submit(context.Background(), completeForm())

	// THEN one request goes to the feedback endpoint carrying identity and answers
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, poster.bodies, 1)
	assert.Equal(t, Path, poster.paths[0])
	assert.Equal(t, id, poster.ids[0])
	assert.Equal(t, &Request{
		UserName:    "ada",
		Email:       "ada@example.edu",
		FeedbackKey: "io_operations",
		Useful:      "Very useful",
		Quality:     "Good",
		Comments:    "more examples please",
	}, poster.bodies[0])
}

func TestSender_SignedOut_SendsNothing(t *testing.T) {
	// GIVEN no signed-in learner
	poster := &recordingPoster{}
	s := NewSender(DefaultQuestions(), sessions(t, ""), poster)

	// WHEN a complete form is submitted
	_, err := s.Submit(context.Background(), completeForm())

	// THEN the gate refuses it before anything is sent
	assert.ErrorIs(t, err, sim.ErrUnauthorized)
	assert.Empty(t, poster.bodies)
}

func TestSender_IncompleteForm_Rejected(t *testing.T) {
	poster := &recordingPoster{}
	s := NewSender(DefaultQuestions(), sessions(t, "ada@example.edu"), poster)

	_, err := s.Submit(context.Background(), Form{Key: " "})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = s.Submit(context.Background(), Form{Key: "io_operations", Useful: "Meh"})
	var verr *sim.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"quality", "useful"}, verr.Result.Fields())
	assert.Equal(t, sim.ReasonNotChoice, verr.Result["useful"].Reason)

	assert.Empty(t, poster.bodies)
}

func TestSender_PostFailure_Returned(t *testing.T) {
	poster := &recordingPoster{err: &sim.ServiceError{StatusCode: http.StatusBadGateway, Body: "down"}}
	s := NewSender(DefaultQuestions(), sessions(t, "ada@example.edu"), poster)

	id, err := s.Submit(context.Background(), completeForm())

	var serr *sim.ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, poster.ids[0], id)
}

func TestQuestions_Validate(t *testing.T) {
	q := DefaultQuestions()
	tests := []struct {
		name   string
		form   Form
		fields []string
	}{
		{"complete", completeForm(), []string{}},
		{"no comments", Form{Key: "k", Useful: "Useful", Quality: "Poor"}, []string{}},
		{"unanswered", Form{Key: "k"}, []string{"quality", "useful"}},
		{"comment too long", Form{Key: "k", Useful: "Useful", Quality: "Poor",
			Comments: strings.Repeat("é", MaxCommentLength+1)}, []string{"comments"}},
		{"comment at limit", Form{Key: "k", Useful: "Useful", Quality: "Poor",
			Comments: strings.Repeat("é", MaxCommentLength)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fields, q.Validate(tt.form).Fields())
		})
	}
}

func TestSender_WithClient_WireBody(t *testing.T) {
	// GIVEN the HTTP client against a live endpoint
	var (
		mu      sync.Mutex
		gotPath string
		gotBody map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer server.Close()
	s := NewSender(DefaultQuestions(), sessions(t, "ada@example.edu"), submit.NewClient(server.URL, time.Second))

	// WHEN feedback is submitted
	_, err := s.Submit(context.Background(), completeForm())

	// THEN the body uses the service's snake_case keys
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/update/feedback", gotPath)
	assert.Equal(t, map[string]string{
		"user_name":    "ada",
		"email":        "ada@example.edu",
		"feedback_key": "io_operations",
		"useful":       "Very useful",
		"quality":      "Good",
		"comments":     "more examples please",
	}, gotBody)
}
