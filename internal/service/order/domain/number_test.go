package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatOrderNumber(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 30, 15, 4, 5, 0, time.Local)
	require.Equal(t, "ORD-20260830-0001", FormatOrderNumber(day, 1))
	require.Equal(t, "ORD-20260830-0042", FormatOrderNumber(day, 42))
	// 序号超过 4 位时不截断
	require.Equal(t, "ORD-20260830-12345", FormatOrderNumber(day, 12345))

	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{4,}$`)
	require.Regexp(t, pattern, FormatOrderNumber(time.Now(), 7))
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 23, 59, 59, 999999999, time.Local)
	start, end := DayBounds(now)

	require.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), end)

	// 半开区间：当天属于区间，次日零点不属于
	require.False(t, now.Before(start))
	require.True(t, now.Before(end))
	require.False(t, end.Before(end))
}

func TestDayBoundsCrossesMonth(t *testing.T) {
	t.Parallel()

	start, end := DayBounds(time.Date(2026, 1, 31, 12, 0, 0, 0, time.Local))
	require.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), end)
}
