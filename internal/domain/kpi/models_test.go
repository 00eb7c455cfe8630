package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("dailyActiveUsers")
	require.NoError(t, err)
	assert.Equal(t, KindDailyActiveUsers, kind)
	assert.Equal(t, "Daily Active Users", kind.Label())

	_, err = ParseKind("somethingElse")
	assert.ErrorIs(t, err, ErrUnknownKPI)

	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrUnknownKPI)
}

func TestKindsIsStableAndComplete(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, len(labels))
	assert.Equal(t, kinds, Kinds())
	assert.Equal(t, KindDailyActiveUsers, kinds[0])

	for _, k := range kinds {
		assert.NotEmpty(t, k.Label(), string(k))
	}
}

func TestWindowContains(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: end}

	assert.True(t, w.Contains(start), "start is included")
	assert.False(t, w.Contains(end), "end is excluded")
	assert.True(t, w.Contains(end.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(time.Time{}), "zero timestamps are never inside")

	assert.Equal(t, 7.0, w.Days())
}

func TestCohortSemantics(t *testing.T) {
	everyone := Everyone()
	assert.True(t, everyone.Unfiltered())
	assert.True(t, everyone.Contains("anyone@x.com"))
	assert.Nil(t, everyone.Emails())

	nobody := CohortOf(nil)
	assert.False(t, nobody.Unfiltered(), "empty cohort is not the same as unfiltered")
	assert.False(t, nobody.Contains("anyone@x.com"))
	assert.Zero(t, nobody.Size())

	some := CohortOf([]string{"a@x.com", "b@x.com", "a@x.com"})
	assert.False(t, some.Unfiltered())
	assert.True(t, some.Contains("a@x.com"))
	assert.False(t, some.Contains("c@x.com"))
	assert.Equal(t, 2, some.Size(), "duplicates collapse")
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com"}, some.Emails())
}
