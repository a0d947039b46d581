// Package feedback sends the learner's end-of-module survey. It is gated on the
// same session as simulation submissions and posted to the same service.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/session"
)

// Path is the service endpoint feedback is posted to.
const Path = "/update/feedback"

// MaxCommentLength caps the free-text answer, in runes.
const MaxCommentLength = 2000

// ErrMissingKey is returned when a form names no module to attach feedback to.
var ErrMissingKey = errors.New("feedback key must not be empty")

// Questions holds the answer choices for the two rating questions.
type Questions struct {
	Useful  []string
	Quality []string
}

// DefaultQuestions returns the choice sets used by the module pages.
func DefaultQuestions() Questions {
	return Questions{
		Useful:  []string{"Very useful", "Useful", "Somewhat useful", "Not useful"},
		Quality: []string{"Excellent", "Good", "Average", "Poor"},
	}
}

// Form is one set of answers. Key identifies the module the feedback is for.
type Form struct {
	Key      string
	Useful   string
	Quality  string
	Comments string
}

// Request is the wire body posted to Path.
type Request struct {
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
	FeedbackKey string `json:"feedback_key"`
	Useful      string `json:"useful"`
	Quality     string `json:"quality"`
	Comments    string `json:"comments"`
}

// NewRequest attributes f to id. Comments are trimmed.
func NewRequest(id sim.Identity, f Form) *Request {
	return &Request{
		UserName:    id.UserName,
		Email:       id.Email,
		FeedbackKey: f.Key,
		Useful:      f.Useful,
		Quality:     f.Quality,
		Comments:    strings.TrimSpace(f.Comments),
	}
}

// Validate reports every unanswered or unknown rating and an over-long comment.
// Comments are optional.
func (q Questions) Validate(f Form) sim.ValidationResult {
	result := sim.ValidationResult{}
	if !slices.Contains(q.Useful, f.Useful) {
		result["useful"] = sim.Violation{Field: "useful", Reason: sim.ReasonNotChoice, Value: f.Useful,
			Message: fmt.Sprintf("Please choose how useful the module was: %s.", strings.Join(q.Useful, ", "))}
	}
	if !slices.Contains(q.Quality, f.Quality) {
		result["quality"] = sim.Violation{Field: "quality", Reason: sim.ReasonNotChoice, Value: f.Quality,
			Message: fmt.Sprintf("Please rate the quality of the module: %s.", strings.Join(q.Quality, ", "))}
	}
	if n := len([]rune(strings.TrimSpace(f.Comments))); n > MaxCommentLength {
		result["comments"] = sim.Violation{Field: "comments", Reason: sim.ReasonAboveMax, Value: f.Comments,
			Message: fmt.Sprintf("Please keep comments under %d characters (got %d).", MaxCommentLength, n)}
	}
	return result
}

// Poster delivers a JSON body to the service. *submit.Client implements it.
type Poster interface {
	Post(ctx context.Context, path string, body any, requestID string) ([]byte, error)
}

// SessionSource supplies the current session.
type SessionSource interface {
	Current() *session.Session
}

// Sender submits feedback forms.
type Sender struct {
	questions Questions
	sessions  SessionSource
	poster    Poster
	newID     func() string
}

// NewSender creates a sender validating against questions.
func NewSender(questions Questions, sessions SessionSource, poster Poster) *Sender {
	return &Sender{questions: questions, sessions: sessions, poster: poster, newID: uuid.NewString}
}

// Questions returns the choice sets the sender validates against.
func (s *Sender) Questions() Questions {
	return s.questions
}

// Submit posts f and returns the request ID it was sent with.
//
// It returns sim.ErrUnauthorized when the session is not signed in,
// ErrMissingKey or *sim.ValidationError for an incomplete form, and the
// transport's error when the post fails. Nothing is sent in the first three cases.
func (s *Sender) Submit(ctx context.Context, f Form) (string, error) {
	sess := s.sessions.Current()
	if session.Evaluate(sess) != session.Authorized {
		logrus.Debugf("[feedback] submit suppressed: session unauthorized")
		return "", sim.ErrUnauthorized
	}
	if strings.TrimSpace(f.Key) == "" {
		return "", ErrMissingKey
	}
	if result := s.questions.Validate(f); !result.OK() {
		return "", &sim.ValidationError{Result: result}
	}

	id := s.newID()
	if _, err := s.poster.Post(ctx, Path, NewRequest(sess.Identity, f), id); err != nil {
		logrus.Warnf("[feedback] request %s for %s failed: %v", id, f.Key, err)
		return id, err
	}
	logrus.Infof("[feedback] recorded %s feedback from %s (request %s)", f.Key, sess.Identity.UserName, id)
	return id, nil
}
