package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, city string) (Snapshot, error)
}

func (f *fakeSearcher) Current(ctx context.Context, city string) (Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	f.mu.Unlock()
	return f.fn(ctx, city)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestWorkflowEmptyCityMakesNoCall(t *testing.T) {
	s := &fakeSearcher{fn: func(context.Context, string) (Snapshot, error) { return Snapshot{}, nil }}
	w := NewWorkflow(s)

	for _, city := range []string{"", "   "} {
		_, err := w.Search(context.Background(), city)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, "Please enter a city name", verr.Message)
	}
	require.Zero(t, s.callCount())
}

func TestWorkflowAgainstProvider(t *testing.T) {
	srv := providerServer(t, 200, bangalorePayload, nil)
	w := NewWorkflow(NewClient(ClientConfig{BaseURL: srv.URL, HTTPClient: srv.Client()}))

	view, err := w.Search(context.Background(), "Bangalore")
	require.NoError(t, err)
	require.False(t, view.Loading)
	require.NotNil(t, view.Snapshot)
	require.Equal(t, Snapshot{Temperature: 28, Humidity: 40, WindSpeedKmh: 9.0, Location: "Bangalore", Icon: IconClear}, *view.Snapshot)
}

func TestWorkflowFailureClearsSnapshot(t *testing.T) {
	ok := Snapshot{Temperature: 20, Location: "Paris", Icon: IconCloud}
	fail := false
	s := &fakeSearcher{fn: func(context.Context, string) (Snapshot, error) {
		if fail {
			return Snapshot{}, &RequestError{Message: "city not found", Status: 404}
		}
		return ok, nil
	}}
	w := NewWorkflow(s)

	view, err := w.Search(context.Background(), "Paris")
	require.NoError(t, err)
	require.NotNil(t, view.Snapshot)

	fail = true
	view, err = w.Search(context.Background(), "Unknown")
	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "city not found", rerr.Message)
	require.Nil(t, view.Snapshot)
	require.False(t, view.Loading)
}

func TestWorkflowDiscardsStaleResponse(t *testing.T) {
	releaseSlow := make(chan struct{})
	slowStarted := make(chan struct{})
	s := &fakeSearcher{fn: func(_ context.Context, city string) (Snapshot, error) {
		if city == "Slow" {
			close(slowStarted)
			<-releaseSlow
		}
		return Snapshot{Location: city}, nil
	}}
	w := NewWorkflow(s)

	type result struct {
		view View
		err  error
	}
	slowDone := make(chan result, 1)
	go func() {
		v, err := w.Search(context.Background(), "Slow")
		slowDone <- result{v, err}
	}()
	<-slowStarted
	require.True(t, w.View().Loading)

	view, err := w.Search(context.Background(), "Fast")
	require.NoError(t, err)
	require.Equal(t, "Fast", view.Snapshot.Location)
	require.True(t, view.Loading, "slow search still pending")

	close(releaseSlow)
	var slow result
	select {
	case slow = <-slowDone:
	case <-time.After(5 * time.Second):
		t.Fatal("slow search did not finish")
	}
	require.ErrorIs(t, slow.err, ErrSuperseded)
	require.Equal(t, "Fast", slow.view.Snapshot.Location)
	require.False(t, slow.view.Loading)
	require.Equal(t, "Fast", w.View().Snapshot.Location)
}

func TestRegistryReusesAndSweeps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(&fakeSearcher{}, time.Minute)

	a := r.Get("a", now)
	require.Same(t, a, r.Get("a", now.Add(30*time.Second)))
	require.NotSame(t, a, r.Get("b", now))

	require.Equal(t, 1, r.Sweep(now.Add(80*time.Second)))
	require.Equal(t, 1, r.Len())

	r.Forget("a")
	require.Zero(t, r.Len())
}
