package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-history/internal/weather"
)

func TestSelector(t *testing.T) {
	s := NewSelector(weather.Locations, func(a, b weather.Location) bool { return a == b })

	first, ok := s.Selected()
	require.True(t, ok)
	require.Equal(t, "Berlin, DE", first.Name)
	require.Len(t, s.Options(), 9)

	tokyo, ok := weather.LookupLocation("Tokyo, Japan")
	require.True(t, ok)
	require.NoError(t, s.Select(tokyo))
	require.True(t, s.IsSelected(tokyo))
	require.False(t, s.IsSelected(first))

	// A near-identical item is a different option.
	fake := tokyo
	fake.Latitude += 0.1
	require.ErrorIs(t, s.Select(fake), ErrUnknownOption)
	require.True(t, s.IsSelected(tokyo))

	require.NoError(t, s.SelectFunc(func(l weather.Location) bool { return l.Name == "London, UK" }))
	cur, _ := s.Selected()
	require.Equal(t, 51.5074, cur.Latitude)
}

func TestSelectorOptionsAreCopied(t *testing.T) {
	items := []weather.RangeDays{7, 14}
	s := NewSelector(items, func(a, b weather.RangeDays) bool { return a == b })
	items[0] = 99

	opts := s.Options()
	require.Equal(t, []weather.RangeDays{7, 14}, opts)
	opts[1] = 42
	require.Equal(t, []weather.RangeDays{7, 14}, s.Options())
}

func TestEmptySelector(t *testing.T) {
	s := NewSelector[int](nil, func(a, b int) bool { return a == b })
	_, ok := s.Selected()
	require.False(t, ok)
	require.ErrorIs(t, s.Select(1), ErrUnknownOption)
}

func TestSelectorFindDoesNotSelect(t *testing.T) {
	s := NewSelector(weather.Ranges, func(a, b weather.RangeDays) bool { return a == b })

	got, err := s.Find(func(r weather.RangeDays) bool { return r == 60 })
	require.NoError(t, err)
	require.Equal(t, weather.RangeDays(60), got)
	cur, _ := s.Selected()
	require.Equal(t, weather.RangeDays(7), cur)

	_, err = s.Find(func(r weather.RangeDays) bool { return r == 15 })
	require.ErrorIs(t, err, ErrUnknownOption)
}
