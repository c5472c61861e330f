package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsdlsync/internal/params"
	"wsdlsync/internal/runstate"
	"wsdlsync/internal/sink"
	"wsdlsync/internal/target"
)

// mockExecCommandContext re-runs the test binary as the tool.
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, exe, cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) < 3 || args[1] != SubCommand {
		fmt.Fprintf(os.Stderr, "usage: dotnet svcutil <inputs...>\n")
		os.Exit(2)
	}

	input := args[2]
	switch {
	case strings.Contains(input, "fail"):
		fmt.Fprintln(os.Stderr, "Error: cannot reach service")
		os.Exit(3)
	case strings.Contains(input, "hang"):
		time.Sleep(10 * time.Second)
		os.Exit(0)
	case strings.Contains(input, "linger"):
		time.Sleep(3 * time.Second)
		os.Exit(0)
	case strings.Contains(input, "orphan"):
		// Leave a child holding stdout, like a build server node.
		exe, _ := os.Executable()
		child := exec.Command(exe, "-test.run=TestHelperProcess", "--", args[0], SubCommand, "http://linger")
		child.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr
		if err := child.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("generated")
		os.Exit(0)
	case strings.Contains(input, "slow"):
		time.Sleep(300 * time.Millisecond)
		fmt.Println("done slowly")
		os.Exit(0)
	default:
		cwd, _ := os.Getwd()
		fmt.Printf("cwd=%s\n", cwd)
		fmt.Printf("args=%s\n", strings.Join(args[1:], "|"))
		os.Exit(0)
	}
}

func newTestInvoker(t *testing.T, opts Options) (*Invoker, *sink.Memory) {
	t.Helper()
	mem := sink.NewMemory()
	opts.Sink = mem
	inv := New(opts)
	inv.command = mockExecCommandContext
	return inv, mem
}

func newTestTarget(t *testing.T) target.Target {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "App", target.ServiceReferenceDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	return target.New(filepath.Join(dir, target.ConfigFileName))
}

func TestBuildArgs_Deterministic(t *testing.T) {
	p := params.GenerationParameters{
		Inputs:            []string{"http://x/s?wsdl"},
		NamespaceMappings: []string{"*, Foo"},
		OutputFile:        "Reference.cs",
		TargetFramework:   "net8.0",
		TypeReuseMode:     "Custom",
		References:        []string{"A, {A,1.0}"},
	}

	want := []string{"svcutil", "http://x/s?wsdl", "-n", "*, Foo", "-o", "Reference.cs", "-d", ".", "-tf", "net8.0", "-ntr", "-r", "A, {A,1.0}"}
	if diff := cmp.Diff(want, BuildArgs(p)); diff != "" {
		t.Errorf("BuildArgs() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, `svcutil http://x/s?wsdl -n "*, Foo" -o Reference.cs -d . -tf net8.0 -ntr -r "A, {A,1.0}"`, CommandLine(BuildArgs(p)))

	// Same input, same output.
	if diff := cmp.Diff(BuildArgs(p), BuildArgs(p)); diff != "" {
		t.Errorf("BuildArgs() is not stable:\n%s", diff)
	}
}

func TestBuildArgs_Defaults(t *testing.T) {
	p := params.FromDocument(params.Document{Options: params.Options{
		Inputs: []string{"http://a?wsdl", "http://b?wsdl"},
	}})

	want := []string{"svcutil", "http://a?wsdl", "http://b?wsdl", "-o", "Reference.cs", "-d", "."}
	if diff := cmp.Diff(want, BuildArgs(p)); diff != "" {
		t.Errorf("BuildArgs() mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandLine_Quoting(t *testing.T) {
	assert.Equal(t, `a "b c" "" "say \"hi\""`, CommandLine([]string{"a", "b c", "", `say "hi"`}))
}

func TestInvoke_Success(t *testing.T) {
	inv, mem := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)
	p := params.GenerationParameters{Inputs: []string{"http://x/s?wsdl"}, OutputFile: "Reference.cs", TypeReuseMode: "All"}

	outcome, err := inv.Invoke(context.Background(), tgt, p)
	require.NoError(t, err)

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 0, outcome.ExitCode)
	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, tgt.Key(), outcome.Target)
	assert.False(t, inv.IsRunning(tgt.Key()))

	cwd, err := filepath.EvalSymlinks(tgt.Dir)
	require.NoError(t, err)
	lines := mem.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "> dotnet svcutil http://x/s?wsdl -o Reference.cs -d .", lines[0])
	assert.True(t, mem.Contains("args=svcutil|http://x/s?wsdl|-o|Reference.cs|-d|."))

	var sawCwd bool
	for _, l := range lines {
		if strings.HasPrefix(l, "cwd=") {
			got, err := filepath.EvalSymlinks(strings.TrimPrefix(l, "cwd="))
			require.NoError(t, err)
			assert.Equal(t, cwd, got)
			sawCwd = true
		}
	}
	assert.True(t, sawCwd, "expected the tool to report its working directory")
}

func TestInvoke_RemovesPreviousArtifact(t *testing.T) {
	inv, _ := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)
	artifact := filepath.Join(tgt.Dir, "Reference.cs")
	require.NoError(t, os.WriteFile(artifact, []byte("// old"), 0644))

	_, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{
		Inputs: []string{"http://x"}, OutputFile: "Reference.cs", TypeReuseMode: "All",
	})
	require.NoError(t, err)

	_, statErr := os.Stat(artifact)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestInvoke_ArtifactRemovalFailureIsNotFatal(t *testing.T) {
	inv, mem := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)
	// A non-empty directory in place of the output file cannot be removed.
	blocker := filepath.Join(tgt.Dir, "Reference.cs")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "child"), 0755))

	outcome, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{
		Inputs: []string{"http://x"}, OutputFile: "Reference.cs", TypeReuseMode: "All",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.True(t, mem.Contains("warning: could not remove"))
}

func TestInvoke_ProcessFailure(t *testing.T) {
	inv, mem := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)

	outcome, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{
		Inputs: []string{"http://fail/s?wsdl"}, OutputFile: "Reference.cs", TypeReuseMode: "All",
	})
	require.Error(t, err)

	var failure *ProcessFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 3, failure.ExitCode)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.True(t, mem.Contains("[stderr] Error: cannot reach service"))
	assert.True(t, mem.Contains("exited with code 3"))
	assert.False(t, inv.IsRunning(tgt.Key()))
}

func TestInvoke_SpawnError(t *testing.T) {
	mem := sink.NewMemory()
	inv := New(Options{Tool: "wsdlsync-no-such-tool-7f3a", Sink: mem})
	tgt := newTestTarget(t)

	outcome, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{Inputs: []string{"http://x"}})
	require.Error(t, err)

	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Contains(t, spawnErr.Error(), "on PATH")
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, -1, outcome.ExitCode)
	assert.False(t, inv.IsRunning(tgt.Key()), "in-flight mark must be released after a spawn error")
}

func TestInvoke_Timeout(t *testing.T) {
	inv, _ := newTestInvoker(t, Options{Timeout: 200 * time.Millisecond})
	tgt := newTestTarget(t)

	_, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{Inputs: []string{"http://hang"}})
	require.Error(t, err)

	var failure *ProcessFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.TimedOut)
	assert.False(t, inv.IsRunning(tgt.Key()))
}

func TestInvoke_MutualExclusion(t *testing.T) {
	inv, _ := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)
	p := params.GenerationParameters{Inputs: []string{"http://slow/s?wsdl"}, TypeReuseMode: "All"}

	var (
		wg    sync.WaitGroup
		first Outcome
		err1  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, err1 = inv.Invoke(context.Background(), tgt, p)
	}()

	require.Eventually(t, func() bool { return inv.IsRunning(tgt.Key()) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{tgt.Key()}, inv.Running())

	second, err2 := inv.Invoke(context.Background(), tgt, p)
	require.NoError(t, err2)
	assert.True(t, second.Skipped())

	wg.Wait()
	require.NoError(t, err1)
	assert.True(t, first.Succeeded())
	assert.False(t, inv.IsRunning(tgt.Key()))

	// Once the winner finished, the target can run again.
	third, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{Inputs: []string{"http://x"}, TypeReuseMode: "All"})
	require.NoError(t, err)
	assert.True(t, third.Succeeded())
}

func TestInvoke_DistinctTargetsRunConcurrently(t *testing.T) {
	inv, _ := newTestInvoker(t, Options{})
	a, b := newTestTarget(t), newTestTarget(t)
	p := params.GenerationParameters{Inputs: []string{"http://slow"}, TypeReuseMode: "All"}

	var wg sync.WaitGroup
	results := make([]Outcome, 2)
	for i, tgt := range []target.Target{a, b} {
		wg.Add(1)
		go func(i int, tgt target.Target) {
			defer wg.Done()
			results[i], _ = inv.Invoke(context.Background(), tgt, p)
		}(i, tgt)
	}
	wg.Wait()

	assert.True(t, results[0].Succeeded())
	assert.True(t, results[1].Succeeded())
}

func TestInvoke_DescendantHoldingOutputDoesNotBlock(t *testing.T) {
	inv, mem := newTestInvoker(t, Options{Timeout: 10 * time.Second, WaitDelay: 200 * time.Millisecond})
	tgt := newTestTarget(t)

	start := time.Now()
	outcome, err := inv.Invoke(context.Background(), tgt, params.GenerationParameters{Inputs: []string{"http://orphan/s?wsdl"}})
	require.NoError(t, err)

	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Less(t, time.Since(start), 2500*time.Millisecond)
	assert.True(t, mem.Contains("generated"))
	assert.False(t, inv.IsRunning(tgt.Key()))
}

func TestInvoke_OnStartHook(t *testing.T) {
	inv, _ := newTestInvoker(t, Options{})
	tgt := newTestTarget(t)
	p := params.GenerationParameters{Inputs: []string{"http://x"}, TypeReuseMode: "All"}

	started := 0
	outcome, err := inv.Invoke(context.Background(), tgt, p, OnStart(func() {
		assert.True(t, inv.IsRunning(tgt.Key()))
		started++
	}))
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, 1, started)

	// A skipped run never reports a start.
	release, ok := inv.tryAcquire(tgt.Key())
	require.True(t, ok)
	defer release()
	outcome, err = inv.Invoke(context.Background(), tgt, p, OnStart(func() { started++ }))
	require.NoError(t, err)
	assert.True(t, outcome.Skipped())
	assert.Equal(t, 1, started)
}

func TestInvoke_MutualExclusionAcrossProcesses(t *testing.T) {
	state := t.TempDir()
	first, _ := newTestInvoker(t, Options{RunState: runstate.New(state)})
	second, _ := newTestInvoker(t, Options{RunState: runstate.New(state)})
	tgt := newTestTarget(t)
	p := params.GenerationParameters{Inputs: []string{"http://slow/s?wsdl"}, TypeReuseMode: "All"}

	var (
		wg     sync.WaitGroup
		winner Outcome
		err1   error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		winner, err1 = first.Invoke(context.Background(), tgt, p)
	}()

	require.Eventually(t, func() bool { return first.IsRunning(tgt.Key()) }, 2*time.Second, 5*time.Millisecond)

	loser, err := second.Invoke(context.Background(), tgt, p)
	require.NoError(t, err)
	assert.True(t, loser.Skipped())
	assert.False(t, second.IsRunning(tgt.Key()))

	wg.Wait()
	require.NoError(t, err1)
	assert.True(t, winner.Succeeded())

	// The lock is released with the run.
	again, err := second.Invoke(context.Background(), tgt, params.GenerationParameters{Inputs: []string{"http://x"}, TypeReuseMode: "All"})
	require.NoError(t, err)
	assert.True(t, again.Succeeded())
}

func TestInvoke_UnusableRunStateFallsBackToProcessGuard(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	inv, _ := newTestInvoker(t, Options{RunState: runstate.New(filepath.Join(blocker, "state"))})
	outcome, err := inv.Invoke(context.Background(), newTestTarget(t), params.GenerationParameters{Inputs: []string{"http://x"}, TypeReuseMode: "All"})
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
}
