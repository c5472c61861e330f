package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsdlsync/internal/config"
	"wsdlsync/internal/target"
)

const localParams = `{"providerId":"Microsoft.Tools.ServiceModel.Svcutil","version":"2.1.0","options":{"inputs":["../Contracts/Service.wsdl"]}}`

type sdRecorder struct {
	mu     sync.Mutex
	states []string
}

func (r *sdRecorder) notify(_ bool, state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return false, nil
}

func (r *sdRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func stubSdNotify(t *testing.T) *sdRecorder {
	t.Helper()
	rec := &sdRecorder{}
	orig := sdNotify
	sdNotify = rec.notify
	t.Cleanup(func() { sdNotify = orig })
	return rec
}

func writeTarget(t *testing.T, workspace, project, content string) target.Target {
	t.Helper()
	path := filepath.Join(workspace, project, target.ServiceReferenceDir, target.ConfigFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return target.New(path)
}

func TestRunWatchMode_LifecycleAndTeardown(t *testing.T) {
	rec := stubSdNotify(t)

	workspace := t.TempDir()
	valid := writeTarget(t, workspace, "Billing", localParams)
	writeTarget(t, workspace, "Broken", "{")

	settings := config.GetDefaultSettings()
	cfg := &Config{
		Workspace: workspace,
		Monitor:   true,
		Settings:  &settings,
		Output:    io.Discard,
	}
	services, err := InitializeServices(cfg)
	require.NoError(t, err)
	defer services.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatchMode(ctx, cfg, services) }()

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	assert.True(t, services.Coordinator.IsRunning())
	assert.True(t, services.Supervisor.IsMonitoring(valid))
	assert.Len(t, services.Supervisor.Targets(), 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch mode did not stop")
	}

	assert.Equal(t, []string{daemon.SdNotifyReady, daemon.SdNotifyStopping}, rec.snapshot())
	assert.False(t, services.Coordinator.IsRunning())
	assert.Empty(t, services.Supervisor.Targets())
}

func TestRunWatchMode_NoMonitoringByDefault(t *testing.T) {
	rec := stubSdNotify(t)

	workspace := t.TempDir()
	writeTarget(t, workspace, "Billing", localParams)

	settings := config.GetDefaultSettings()
	cfg := &Config{Workspace: workspace, Settings: &settings, Output: io.Discard}
	services, err := InitializeServices(cfg)
	require.NoError(t, err)
	defer services.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatchMode(ctx, cfg, services) }()

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Empty(t, services.Supervisor.Targets())

	cancel()
	require.NoError(t, <-done)
}

func TestStartDiscovered_SkipsInvalid(t *testing.T) {
	workspace := t.TempDir()
	writeTarget(t, workspace, "A", localParams)
	writeTarget(t, workspace, "B", localParams)
	writeTarget(t, workspace, "C", "not json")

	settings := config.GetDefaultSettings()
	services, err := InitializeServices(&Config{Workspace: workspace, Settings: &settings, Output: io.Discard})
	require.NoError(t, err)
	defer services.Close()
	defer services.Supervisor.StopAll()

	assert.Equal(t, 2, startDiscovered(context.Background(), workspace, services))
}
