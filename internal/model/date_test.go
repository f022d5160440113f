package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_ISO(t *testing.T) {
	d := ParseDate("2024-03-15")
	require.True(t, d.Known())
	assert.Equal(t, "2024-03-15", d.String())
}

func TestParseDate_USStyle(t *testing.T) {
	d := ParseDate("3/15/2024")
	require.True(t, d.Known())
	assert.Equal(t, "2024-03-15", d.String())
}

func TestParseDate_EmptyIsUnknown(t *testing.T) {
	d := ParseDate("")
	assert.False(t, d.Known())
	assert.Equal(t, "", d.String())
}

func TestParseDate_GarbageIsUnknownNotError(t *testing.T) {
	d := ParseDate("sine die")
	assert.False(t, d.Known())
}

func TestDate_UnknownSortsLast(t *testing.T) {
	known := DateOf(2024, time.January, 1)
	unknown := ParseDate("")

	assert.True(t, known.Before(unknown), "every valid date sorts before unknown")
	assert.False(t, unknown.Before(known), "unknown never sorts before a valid date")
	assert.False(t, unknown.Before(unknown))
}

func TestDate_AddDaysAndDaysUntil(t *testing.T) {
	d := DateOf(2024, time.January, 31)
	later := d.AddDays(30)
	assert.Equal(t, "2024-03-01", later.String())
	assert.Equal(t, 30, d.DaysUntil(later))
	assert.Equal(t, -30, later.DaysUntil(d))
}

func TestDate_AddDaysUnknownStaysUnknown(t *testing.T) {
	assert.False(t, ParseDate("").AddDays(30).Known())
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := DateOf(2023, time.June, 2)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2023-06-02"`, string(b))

	var back Date
	require.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, d.Equal(back))
}
