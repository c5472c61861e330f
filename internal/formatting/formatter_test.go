package formatting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkRows []struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

func (c checkRows) Headers() []string { return []string{"IDENTIFIER", "STATUS"} }

func (c checkRows) Rows() [][]string {
	out := make([][]string, 0, len(c))
	for _, r := range c {
		out = append(out, []string{r.Identifier, r.Status})
	}
	return out
}

func sampleRows() checkRows {
	return checkRows{
		{Identifier: "http://a?wsdl", Status: "unchanged"},
		{Identifier: "http://b?wsdl", Status: "changed"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"console", FormatConsole, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableFormatter_Tabular(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Writer: &buf})

	require.NoError(t, f.FormatData(sampleRows()))
	out := buf.String()
	assert.Contains(t, out, "IDENTIFIER")
	assert.Contains(t, out, "http://b?wsdl")
	assert.Contains(t, out, "changed")
	assert.Contains(t, out, "Total:")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatTable, Writer: &buf})

	require.NoError(t, f.FormatData(checkRows{}))
	assert.Contains(t, buf.String(), "No items found")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatJSON, Writer: &buf, Quiet: true})

	require.NoError(t, f.FormatData(sampleRows()))
	assert.Equal(t, `[{"identifier":"http://a?wsdl","status":"unchanged"},{"identifier":"http://b?wsdl","status":"changed"}]`, strings.TrimSpace(buf.String()))
}

func TestYAMLFormatter_UsesJSONTags(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatYAML, Writer: &buf})

	require.NoError(t, f.FormatData(sampleRows()))
	assert.Equal(t, "- identifier: http://a?wsdl\n  status: unchanged\n- identifier: http://b?wsdl\n  status: changed\n", buf.String())
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(Options{Format: FormatConsole, Writer: &buf})

	require.NoError(t, f.FormatData(map[string]interface{}{"b": 2, "a": 1}))
	assert.Equal(t, "a: 1\nb: 2\n", buf.String())
}

func TestSetOptions(t *testing.T) {
	f := New(Options{Format: FormatTable})
	f.SetOptions(Options{Format: FormatTable, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}
