package quote

import (
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/require"
)

func TestFormatSerial(t *testing.T) {
	require.Equal(t, "Q-2024-000001", FormatSerial(2024, 1))
	require.Equal(t, "Q-2025-123456", FormatSerial(2025, 123456))
	require.Equal(t, "Q-2025-", SerialYearPrefix(2025))
}

func TestParseSerial(t *testing.T) {
	year, n, err := ParseSerial("Q-2024-000042")
	require.NoError(t, err)
	require.Equal(t, 2024, year)
	require.Equal(t, 42, n)

	for _, s := range []string{
		"",
		"Q-2024-42",
		"X-2024-000042",
		"Q-1999-000001",
		"Q-2024-000000",
		"Q-2024-0000001",
		"Q-20x4-000001",
		"Q-2024-000001-1",
	} {
		_, _, err := ParseSerial(s)
		require.Errorf(t, err, "serial %q", s)
		require.True(t, merry.Is(err, ErrInvalid))
		require.False(t, ValidSerial(s))
	}
}

func TestNextSerial(t *testing.T) {
	for _, c := range []struct {
		last string
		year int
		want string
	}{
		{"", 2024, "Q-2024-000001"},
		{"Q-2024-000007", 2024, "Q-2024-000008"},
		{"Q-2024-000007", 2025, "Q-2025-000001"},
		{"garbage", 2024, "Q-2024-000001"},
		{"Q-2024-999998", 2024, "Q-2024-999999"},
		{"Q-2024-999999", 2025, "Q-2025-000001"},
	} {
		got, err := NextSerial(c.last, c.year)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}

	_, err := NextSerial("Q-2024-999999", 2024)
	require.Error(t, err)
	require.True(t, merry.Is(err, ErrInvalid))
	require.Contains(t, merry.UserMessage(err), "exhausted")
}
