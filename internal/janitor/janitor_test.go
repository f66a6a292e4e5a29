package janitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benpsk/weather-gate/internal/weather"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	n     int64
	err   error
	calls int
}

func (p *fakePurger) PurgeExpired(context.Context) (int64, error) {
	p.calls++
	return p.n, p.err
}

type noopSearcher struct{}

func (noopSearcher) Current(context.Context, string) (weather.Snapshot, error) {
	return weather.Snapshot{}, nil
}

func TestRunOnceSweepsAndPurges(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	registry := weather.NewRegistry(noopSearcher{}, time.Minute)
	registry.Get("idle", base)
	registry.Get("active", base.Add(50*time.Second))

	purger := &fakePurger{n: 3}
	j := New(time.Hour, registry, purger)
	j.now = func() time.Time { return base.Add(90 * time.Second) }

	swept, purged, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, swept)
	require.EqualValues(t, 3, purged)
	require.Equal(t, 1, registry.Len())
	require.Equal(t, 1, purger.calls)
}

func TestRunOnceWithoutPurger(t *testing.T) {
	j := New(0, weather.NewRegistry(noopSearcher{}, 0), nil)
	require.Equal(t, 10*time.Minute, j.interval)

	swept, purged, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, swept)
	require.Zero(t, purged)
}

func TestRunOnceReportsPurgeError(t *testing.T) {
	j := New(time.Hour, nil, &fakePurger{err: errors.New("db down")})
	_, _, err := j.RunOnce(context.Background())
	require.EqualError(t, err, "db down")
}

func TestStartStop(t *testing.T) {
	j := New(time.Hour, weather.NewRegistry(noopSearcher{}, 0), nil)
	require.NoError(t, j.Start())
	j.Stop()
}
