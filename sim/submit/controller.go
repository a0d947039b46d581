// Package submit runs simulation submissions for one scenario form: it gates on
// the session, validates the form, keeps at most one request in flight and
// composes the response when it arrives.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/compose"
	"github.com/eduwrench/simclient/sim/scenario"
	"github.com/eduwrench/simclient/sim/session"
)

// Phase is the controller's position in the submission lifecycle.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// FailureNotice is the dismissible message shown when a submission fails.
const FailureNotice = "Error executing simulation."

var (
	// ErrInFlight rejects a submit while another request is outstanding.
	ErrInFlight = errors.New("a submission is already in flight")
	// ErrSuperseded resolves a Pending whose request was cancelled or replaced.
	ErrSuperseded = errors.New("submission was superseded")
)

// State is a snapshot of the controller. Result is set only in Succeeded;
// Err and Notice only in Failed.
type State struct {
	Phase      Phase
	Generation uint64
	RequestID  string
	Result     *compose.Result
	Err        error
	Notice     string
}

// Config tunes a controller.
type Config struct {
	Timeout        time.Duration      // per-request deadline; 0 disables it
	ValidationMode sim.ValidationMode // "all" (default) or "first"
}

// DefaultConfig returns a 60s timeout and all-violations validation.
func DefaultConfig() Config {
	return Config{Timeout: 60 * time.Second, ValidationMode: sim.ValidateAll}
}

// Transport delivers one request to the simulation service.
type Transport interface {
	Send(ctx context.Context, path string, req *sim.SimulationRequest, requestID string) (*sim.SimulationResponse, error)
}

// SessionSource supplies the current session. It is read on every submit,
// before the controller takes its own lock.
type SessionSource interface {
	Current() *session.Session
}

// Controller is the generic descriptor-driven submission state machine. One
// controller serves one scenario form.
//
// The form is owned by the caller; edits must not race with Submit.
type Controller struct {
	cfg       Config
	scenario  scenario.Scenario
	sessions  SessionSource
	transport Transport
	form      *sim.FormModel
	newID     func() string

	mu        sync.Mutex
	state     State
	cancel    context.CancelFunc
	pending   *Pending
	observers []func(State)
	queue     []State

	// notifyMu serializes observer delivery.
	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// NewController creates a controller in Idle with a form at the scenario's defaults.
func NewController(cfg Config, sc scenario.Scenario, sessions SessionSource, transport Transport) *Controller {
	if cfg.ValidationMode == "" {
		cfg.ValidationMode = sim.ValidateAll
	}
	return &Controller{
		cfg:       cfg,
		scenario:  sc,
		sessions:  sessions,
		transport: transport,
		form:      sim.NewFormModel(sc.Parameters),
		newID:     uuid.NewString,
	}
}

// Form returns the controller's form model.
func (c *Controller) Form() *sim.FormModel {
	return c.form
}

// Scenario returns the scenario this controller submits to.
func (c *Controller) Scenario() scenario.Scenario {
	return c.scenario
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after every transition, in transition
// order. Observers must not call Submit, Cancel or DismissNotice synchronously.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// commit installs next and queues it for observers. Called with c.mu held;
// returns with it released.
func (c *Controller) commit(next State) {
	c.state = next
	c.queue = append(c.queue, next)
	c.mu.Unlock()
	c.flush()
}

// flush delivers queued states in order. Observers run without c.mu held, so
// they may read State.
func (c *Controller) flush() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		observers := append([]func(State){}, c.observers...)
		c.mu.Unlock()
		for _, fn := range observers {
			fn(next)
		}
	}
}

// Submit starts a submission and returns without waiting for the response.
//
// It returns sim.ErrUnauthorized when the session is not signed in (a terminal
// state is reset to Idle so stale results are hidden), *sim.ValidationError
// when the form is invalid (state unchanged), and ErrInFlight while another
// request is outstanding. Otherwise the previous result and notice are cleared,
// the controller enters Submitting, and exactly one request is issued.
//
// When ctx ends before the response arrives the submission is cancelled as if
// by Cancel: the controller returns to Idle and the Pending resolves with
// ErrSuperseded.
func (c *Controller) Submit(ctx context.Context) (*Pending, error) {
	sess := c.sessions.Current()

	c.mu.Lock()
	if c.state.Phase == Submitting {
		c.mu.Unlock()
		logrus.Debugf("[%s] submit ignored: generation %d in flight", c.scenario.Name, c.state.Generation)
		return nil, ErrInFlight
	}

	if session.Evaluate(sess) != session.Authorized {
		logrus.Debugf("[%s] submit suppressed: session unauthorized", c.scenario.Name)
		if c.state.Phase == Idle {
			c.mu.Unlock()
		} else {
			c.commit(State{Phase: Idle, Generation: c.state.Generation})
		}
		return nil, sim.ErrUnauthorized
	}

	c.form.TouchAll()
	if result := sim.ValidateWith(c.cfg.ValidationMode, c.form, c.scenario.Parameters); !result.OK() {
		c.mu.Unlock()
		return nil, &sim.ValidationError{Result: result}
	}

	req := sim.NewSimulationRequest(sess.Identity, c.form)
	gen := c.state.Generation + 1
	id := c.newID()

	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.cfg.Timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	p := &Pending{generation: gen, requestID: id, done: make(chan struct{})}
	c.cancel = cancel
	c.pending = p
	c.wg.Add(1)

	logrus.Infof("[%s] submitting generation %d (request %s) for %s", c.scenario.Name, gen, id, sess.Identity.UserName)
	c.commit(State{Phase: Submitting, Generation: gen, RequestID: id})

	go c.run(ctx, reqCtx, cancel, p, req)
	return p, nil
}

// run issues the request. parent is the caller's context; ctx is derived from
// it and also carries the per-request deadline.
func (c *Controller) run(parent, ctx context.Context, cancel context.CancelFunc, p *Pending, req *sim.SimulationRequest) {
	defer c.wg.Done()
	defer cancel()
	stop := context.AfterFunc(parent, func() { c.cancelGeneration(p) })
	defer stop()

	resp, err := c.transport.Send(ctx, c.scenario.Path, req, p.requestID)
	if parent.Err() != nil {
		c.cancelGeneration(p)
		return
	}
	c.resolve(p, resp, err)
}

// resolve applies a response to the controller if its generation is current.
func (c *Controller) resolve(p *Pending, resp *sim.SimulationResponse, err error) {
	c.mu.Lock()
	if c.state.Phase != Submitting || c.state.Generation != p.generation {
		current := c.state.Generation
		c.mu.Unlock()
		logrus.Debugf("[%s] discarding response for generation %d (current %d)", c.scenario.Name, p.generation, current)
		p.finish(State{}, ErrSuperseded)
		return
	}

	next := State{Generation: p.generation, RequestID: p.requestID}
	if err != nil {
		logrus.Warnf("[%s] request %s failed: %v", c.scenario.Name, p.requestID, err)
		next.Phase = Failed
		next.Err = err
		next.Notice = FailureNotice
	} else {
		next.Phase = Succeeded
		next.Result = compose.Compose(resp)
		logrus.Infof("[%s] request %s succeeded with %d task records", c.scenario.Name, p.requestID, len(next.Result.Records))
	}
	c.cancel = nil
	c.pending = nil
	c.commit(next)
	p.finish(next, next.Err)
}

// Cancel aborts the in-flight request, if any, and returns to Idle. The
// generation advances so a late response is discarded.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state.Phase != Submitting {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
}

// cancelGeneration cancels p if it is still the request in flight. p resolves
// with ErrSuperseded either way.
func (c *Controller) cancelGeneration(p *Pending) {
	c.mu.Lock()
	if c.state.Phase != Submitting || c.state.Generation != p.generation {
		c.mu.Unlock()
		p.finish(State{}, ErrSuperseded)
		return
	}
	c.cancelLocked()
}

// cancelLocked moves the in-flight submission to Idle on the next generation.
// Called with c.mu held; returns with it released.
func (c *Controller) cancelLocked() {
	cancel, p := c.cancel, c.pending
	c.cancel = nil
	c.pending = nil
	logrus.Infof("[%s] cancelling generation %d", c.scenario.Name, c.state.Generation)
	c.commit(State{Phase: Idle, Generation: c.state.Generation + 1})
	cancel()
	p.finish(State{}, ErrSuperseded)
}

// DismissNotice clears a failure notice without leaving the Failed phase.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	if c.state.Notice == "" {
		c.mu.Unlock()
		return
	}
	next := c.state
	next.Notice = ""
	c.commit(next)
}

// Close cancels any in-flight request and waits for its goroutine to exit.
func (c *Controller) Close() {
	c.Cancel()
	c.wg.Wait()
}

// Pending is the future for one submission.
type Pending struct {
	generation uint64
	requestID  string

	once  sync.Once
	done  chan struct{}
	state State
	err   error
}

// Generation returns the generation this submission was issued with.
func (p *Pending) Generation() uint64 { return p.generation }

// RequestID returns the X-Request-ID sent with this submission.
func (p *Pending) RequestID() string { return p.requestID }

// Done is closed when the submission resolves.
func (p *Pending) Done() <-chan struct{} { return p.done }

func (p *Pending) finish(s State, err error) {
	p.once.Do(func() {
		p.state = s
		p.err = err
		close(p.done)
	})
}

// Wait blocks until the submission resolves or ctx ends. It returns the
// resolved state with the failure cause for Failed, or ErrSuperseded when the
// submission was cancelled.
func (p *Pending) Wait(ctx context.Context) (State, error) {
	select {
	case <-p.done:
		return p.state, p.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}
