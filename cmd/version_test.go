package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsdlsync/internal/params"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = original })
	SetVersion(v)
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{name: "release build", version: "1.4.0", want: "wsdlsync version 1.4.0\n"},
		{name: "unset version", version: "", want: "wsdlsync version dev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version)

			out, err := executeCommand(t, "version")
			require.NoError(t, err)
			assert.Equal(t, tt.want+"dotnet-svcutil "+params.DefaultToolVersion+" (new documents)\n", out)
		})
	}
}

func TestVersionCommand_RejectsArguments(t *testing.T) {
	_, err := executeCommand(t, "version", "extra")
	require.Error(t, err)
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

func TestVersionFlag(t *testing.T) {
	withVersion(t, "2.0.0-rc1")

	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "wsdlsync version 2.0.0-rc1\n", out)
	assert.Equal(t, "2.0.0-rc1", GetVersion())
}
