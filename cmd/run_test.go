package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduwrench/simclient/internal/testutil"
	"github.com/eduwrench/simclient/sim"
	"github.com/eduwrench/simclient/sim/compose"
	"github.com/eduwrench/simclient/sim/history"
	"github.com/eduwrench/simclient/sim/scenario"
	"github.com/eduwrench/simclient/sim/session"
	"github.com/eduwrench/simclient/sim/submit"
)

func newSessions(t *testing.T, email string) *session.Service {
	t.Helper()
	svc, err := session.NewService(nil)
	require.NoError(t, err)
	if email != "" {
		require.NoError(t, svc.Login(email))
	}
	return svc
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunScenario_Success_RendersViewsAndArtifacts(t *testing.T) {
	// GIVEN a signed-in learner, a live service, export and chart destinations
	server := serve(t, http.StatusOK, string(testutil.ResponseBody(t, "montage")))
	dir := t.TempDir()
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	opts := runOptions{
		Scenario:  scenario.ThrustdCloud(),
		Server:    server.URL,
		Timeout:   5 * time.Second,
		Sets:      []string{"num_hosts=4", "mAddLocal=true"},
		ExportDir: dir,
		PNGPath:   filepath.Join(dir, "util.png"),
		History:   store,
	}
	var out bytes.Buffer

	// WHEN the scenario runs
	state, err := runScenario(context.Background(), opts, newSessions(t, "ada@example.edu"), &out)

	// THEN every view is rendered and the artifacts exist
	require.NoError(t, err)
	assert.Equal(t, submit.Succeeded, state.Phase)
	assert.Contains(t, out.String(), "== timeline ==")
	assert.Contains(t, out.String(), "5 tasks on 2 hosts, makespan 10.00")

	base := filepath.Join(dir, "thrustd_cloud-"+state.RequestID)
	export, err := compose.LoadExport(base+"-header.yaml", base+"-tasks.csv")
	require.NoError(t, err)
	assert.Len(t, export.Rows, 5)
	assert.Equal(t, "4", export.Header.Parameters["num_hosts"])
	assert.Equal(t, "true", export.Header.Parameters["mAddLocal"])

	png, err := os.ReadFile(opts.PNGPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	entries, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "succeeded", entries[0].Outcome)
	assert.Equal(t, "ada", entries[0].User)
	assert.Equal(t, 5, entries[0].Records)
}

func TestRunScenario_Unauthorized_PrintsSignInPrompt(t *testing.T) {
	var out bytes.Buffer

	_, err := runScenario(context.Background(), runOptions{Scenario: scenario.IOOperations(), Server: "http://127.0.0.1:1"},
		newSessions(t, ""), &out)

	assert.ErrorIs(t, err, sim.ErrUnauthorized)
	assert.Equal(t, session.SignInPrompt+"\n", out.String())
}

func TestRunScenario_InvalidParameters_ListsEveryViolation(t *testing.T) {
	var out bytes.Buffer
	opts := runOptions{Scenario: scenario.IOOperations(), Server: "http://127.0.0.1:1",
		Sets: []string{"numTasks=0", "task_gflop=abc"}}

	state, err := runScenario(context.Background(), opts, newSessions(t, "ada@example.edu"), &out)

	var verr *sim.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, submit.Idle, state.Phase)
	assert.Contains(t, out.String(), "numTasks: Please provide the number of tasks in the range of [1, 100].")
	assert.Contains(t, out.String(), "taskGflop: ")
}

func TestRunScenario_ServiceFailure_ShowsNotice(t *testing.T) {
	server := serve(t, http.StatusInternalServerError, "boom")
	var out bytes.Buffer

	state, err := runScenario(context.Background(), runOptions{Scenario: scenario.IOOperations(), Server: server.URL, Timeout: time.Second},
		newSessions(t, "ada@example.edu"), &out)

	var serr *sim.ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, submit.Failed, state.Phase)
	assert.Equal(t, submit.FailureNotice+"\n", out.String())
}

func TestRunScenario_Interrupted_CancelsWithoutFailure(t *testing.T) {
	// GIVEN a service that never answers and a history database
	received := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(received)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	opts := runOptions{Scenario: scenario.IOOperations(), Server: server.URL, Timeout: 5 * time.Second, History: store}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-received
		cancel()
	}()
	var out bytes.Buffer

	// WHEN the run is interrupted while the request is outstanding
	state, err := runScenario(ctx, opts, newSessions(t, "ada@example.edu"), &out)

	// THEN it reports a cancellation, not a failure, and records nothing
	assert.ErrorIs(t, err, submit.ErrSuperseded)
	assert.Equal(t, submit.Idle, state.Phase)
	assert.Equal(t, "Submission cancelled\n", out.String())
	entries, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplySets(t *testing.T) {
	form := sim.NewFormModel(scenario.IOOperations().Parameters)

	require.NoError(t, applySets(form, []string{"numTasks=7", "io_overlap=true"}))
	v, _ := form.Value("numTasks")
	assert.Equal(t, "7", v)
	v, _ = form.Value("overlapAllowed")
	assert.Equal(t, "true", v)

	assert.ErrorContains(t, applySets(form, []string{"numTasks"}), "expected name=value")
	assert.ErrorContains(t, applySets(form, []string{"=3"}), "expected name=value")
	assert.Error(t, applySets(form, []string{"bogus=1"}))
}

func TestDescribeSession(t *testing.T) {
	assert.Equal(t, session.SignInPrompt+"\n", describeSession(nil))
	assert.Equal(t, session.SignInPrompt+"\n", describeSession(&session.Session{}))
	assert.Equal(t, "ada <ada@example.edu>\n", describeSession(newSessions(t, "ada@example.edu").Current()))
}

func TestWriteParameters_ShowsConstraints(t *testing.T) {
	var out bytes.Buffer

	writeParameters(&out, scenario.MasterWorker())

	assert.Contains(t, out.String(), "master_worker (POST /run/master_worker)")
	assert.Contains(t, out.String(), "random|highest_flop|lowest_flop")
	assert.Contains(t, out.String(), "[1, 100]")
}
