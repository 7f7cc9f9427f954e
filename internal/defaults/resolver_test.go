package defaults

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/resource"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

const resName = "driverconfig.properties"

func fixedUser(name string) Option {
	return WithCurrentUser(func() string { return name })
}

func TestResolve_NoResourcesYieldsSeed(t *testing.T) {
	r := New(resName, resource.NewLocator(resource.NewMemorySource("empty")), nil, nil, fixedUser("alice"))

	props, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fdbsql.Properties{fdbsql.PropUser: "alice"}, props)
}

func TestResolve_UnknownUserTolerated(t *testing.T) {
	r := New(resName, nil, nil, nil, fixedUser(""))

	props, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestResolve_EarliestDiscoveredWins(t *testing.T) {
	high := resource.NewMemorySource("high")
	high.AddFile(resName, "ssl=true\nuser=svc\n")
	low := resource.NewMemorySource("low")
	low.AddFile(resName, "ssl=false\n# comment\nPGPORT = 9999\ncharSet=utf8\n")

	r := New(resName, resource.NewLocator(high, low), nil, nil, fixedUser("alice"))

	props, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "true", props["ssl"])
	assert.Equal(t, "svc", props[fdbsql.PropUser], "resource overrides OS account")
	assert.Equal(t, "9999", props["PGPORT"])
	assert.Equal(t, "utf8", props["charSet"])
}

func TestResolve_PlaceholdersAreLiteral(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddFile(resName, "password=${secret}\n")

	props, err := New(resName, resource.NewLocator(src), nil, nil, fixedUser("")).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "${secret}", props["password"])
}

func TestResolve_ReadFailureIsConfigLoadError(t *testing.T) {
	src := resource.NewMemorySource("m")
	boom := errors.New("permission denied")
	src.AddUnreadable(resName, boom)

	r := New(resName, resource.NewLocator(src), nil, nil, fixedUser("alice"))

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fdbsql.ErrConfigLoad)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddUnreadable(resName, errors.New("transient"))
	r := New(resName, resource.NewLocator(src), nil, nil, fixedUser("alice"))

	_, err := r.Resolve(context.Background())
	require.Error(t, err)

	src.AddFile(resName, "ssl=true")
	props, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "true", props["ssl"])
}

func TestResolve_CachesAndHandsOutCopies(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddFile(resName, "ssl=true")
	var calls atomic.Int32
	r := New(resName, resource.NewLocator(src), nil, nil, WithCurrentUser(func() string {
		calls.Add(1)
		return "alice"
	}))

	first, err := r.Resolve(context.Background())
	require.NoError(t, err)
	first["ssl"] = "mutated"

	src.AddFile(resName, "ssl=changed")
	second, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "true", second["ssl"])
	assert.Equal(t, int32(1), calls.Load())

	r.Invalidate()
	third, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "changed", third["ssl"])
}

func TestResolve_ConcurrentFirstCallers(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddFile(resName, "ssl=true")
	var calls atomic.Int32
	r := New(resName, resource.NewLocator(src), nil, nil, WithCurrentUser(func() string {
		calls.Add(1)
		return "alice"
	}))

	var wg sync.WaitGroup
	results := make([]fdbsql.Properties, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Resolve(context.Background())
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, p := range results {
		assert.Equal(t, results[0], p)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(resName, nil, nil, nil, fixedUser("a")).Resolve(ctx)
	assert.ErrorIs(t, err, fdbsql.ErrCancelled)
}

func TestResolve_LogLevelDefault(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		explicit  *fdbsql.LogLevel
		wantLevel fdbsql.LogLevel
	}{
		{name: "applied when not explicit", content: "loglevel=2", wantLevel: fdbsql.LogDebug},
		{name: "malformed ignored", content: "loglevel=loud", wantLevel: fdbsql.LogOff},
		{name: "out of range ignored", content: "loglevel=5", wantLevel: fdbsql.LogOff},
		{name: "absent keeps level", content: "ssl=true", wantLevel: fdbsql.LogOff},
		{name: "explicit wins", content: "loglevel=2", explicit: ptr(fdbsql.LogInfo), wantLevel: fdbsql.LogInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := resource.NewMemorySource("m")
			src.AddFile(resName, tt.content)
			ctl := logging.NewController()
			if tt.explicit != nil {
				require.NoError(t, ctl.SetLevel(*tt.explicit))
			}

			_, err := New(resName, resource.NewLocator(src), ctl, nil, fixedUser("a")).Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, ctl.Level())
		})
	}
}

func TestResolve_ExplicitLevelSurvivesRepeatedResolves(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddFile(resName, "loglevel=2")
	ctl := logging.NewController()
	require.NoError(t, ctl.SetLevel(fdbsql.LogOff))
	r := New(resName, resource.NewLocator(src), ctl, nil, fixedUser("a"))

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background())
		require.NoError(t, err)
		r.Invalidate()
	}
	assert.Equal(t, fdbsql.LogOff, ctl.Level())
}

func TestResolve_UnreadableLocationIsConfigError(t *testing.T) {
	src := resource.NewMemorySource("etc")
	src.AddUninspectable(resName, fs.ErrPermission)

	props, err := New(resName, resource.NewLocator(src), nil, nil, fixedUser("u")).Resolve(context.Background())
	require.Error(t, err)
	assert.Nil(t, props)
	assert.ErrorIs(t, err, fdbsql.ErrConfigLoad)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestResolve_DefaultLevelAppliedOnce(t *testing.T) {
	src := resource.NewMemorySource("m")
	src.AddFile(resName, "loglevel=1")
	ctl := logging.NewController()
	r := New(resName, resource.NewLocator(src), ctl, nil, fixedUser("a"))

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fdbsql.LogInfo, ctl.Level())

	src.AddFile(resName, "loglevel=2")
	r.Invalidate()
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fdbsql.LogInfo, ctl.Level())
	assert.False(t, ctl.Explicit())
}

func ptr[T any](v T) *T { return &v }
