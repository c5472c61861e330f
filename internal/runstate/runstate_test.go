package runstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "/work/Billing/ServiceReference/dotnet-svcutil.params.json"

func TestDefaultDir(t *testing.T) {
	assert.Equal(t, "run", filepath.Base(DefaultDir()))
}

func TestTryLock_ExclusiveAcrossStores(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	first, second := New(dir), New(dir)

	unlock, ok, err := first.TryLock(key)
	require.NoError(t, err)
	require.True(t, ok)

	// A second store opens its own handle, the way another process would.
	_, ok, err = second.TryLock(key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other targets are independent.
	unlockOther, ok, err := second.TryLock("/work/Shipping/ServiceReference/dotnet-svcutil.params.json")
	require.NoError(t, err)
	assert.True(t, ok)
	unlockOther()

	unlock()
	unlockAgain, ok, err := second.TryLock(key)
	require.NoError(t, err)
	assert.True(t, ok)
	unlockAgain()
}

func TestTryLock_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, ok, err := New(filepath.Join(blocker, "state")).TryLock(key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestWrittenWithin(t *testing.T) {
	s := New(t.TempDir())
	now := time.Now()

	assert.False(t, s.WrittenWithin(key, time.Second, now), "no marker yet")

	require.NoError(t, s.MarkWritten(key, now))
	assert.True(t, s.WrittenWithin(key, time.Second, now.Add(500*time.Millisecond)))
	assert.True(t, New(s.Dir()).WrittenWithin(key, time.Second, now), "visible to another store")
	assert.False(t, s.WrittenWithin(key, 0, now), "zero window disables the check")
	assert.False(t, s.WrittenWithin("/other", time.Second, now))

	assert.False(t, s.WrittenWithin(key, time.Second, now.Add(2*time.Second)))
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "expired marker is removed")
}

func TestWrittenWithin_CorruptMarker(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.MarkWritten(key, time.Now()))
	require.NoError(t, os.WriteFile(s.path(key, writtenSuffix), []byte("garbage"), 0644))

	assert.False(t, s.WrittenWithin(key, time.Minute, time.Now()))
	_, err := os.Stat(s.path(key, writtenSuffix))
	assert.True(t, os.IsNotExist(err))
}
