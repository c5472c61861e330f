package strings

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "exit code 3: missing binding", SingleLine("exit code 3:\n\tmissing   binding\r\n"))
	assert.Equal(t, "", SingleLine(" \n "))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world this is a long string", 15, "hello world ..."},
		{"newlines collapsed", "hello\n\n\nworld", 20, "hello world"},
		{"carriage returns handled", "hello\r\nworld", 20, "hello world"},
		{"empty string", "", 10, ""},
		{"tiny width clamped", "abcdefgh", 1, "a..."},
		{"negative width clamped", "abcdefgh", -5, "a..."},
		{"unicode kept whole", "ñandú ñandú ñandú", 8, "ñandú..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short path unchanged", "/work/Billing", 20, "/work/Billing"},
		{"keeps the tail", "/home/dev/src/Contoso/Billing/ServiceReference", 20, ".../ServiceReference"},
		{"url tail", "http://services.contoso.local/Billing.svc?wsdl", 18, "...illing.svc?wsdl"},
		{"tiny width clamped", "/a/b/c/d", 2, "...d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), max(tt.maxLen, MinTruncateLen))
		})
	}
}
