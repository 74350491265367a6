package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world 123", CleanText("  Hello,   World! 123  "))
	assert.Equal(t, "", CleanText("!@#$%"))
}

func TestNormalizePhone(t *testing.T) {
	got, ok := NormalizePhone("9876543210")
	require.True(t, ok)
	assert.Equal(t, "+91-9876543210", got)

	got, ok = NormalizePhone("+91-8765432109")
	require.True(t, ok)
	assert.Equal(t, "+91-8765432109", got)

	_, ok = NormalizePhone("123")
	assert.False(t, ok)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "919876543210", DigitsOnly("+91 (98765) 43210"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2025-01-15", "15/01/2025", "15-01-2025", "Jan 15, 2025", "January 15, 2025"} {
		got, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}

func TestExtractDomain(t *testing.T) {
	got, ok := ExtractDomain("mayur@example.com")
	require.True(t, ok)
	assert.Equal(t, "example.com", got)

	_, ok = ExtractDomain("no-at-sign")
	assert.False(t, ok)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Mayurkumar Surani", TitleCase("  mayurkumar   SURANI "))
}
