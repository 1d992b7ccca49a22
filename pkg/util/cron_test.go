package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCronTime(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	// Daily at 03:00; next run is tomorrow morning.
	next, err := NextCronTime("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), next)

	// Later the same day.
	next, err = NextCronTime("0 15 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), next)
}

func TestNextCronTime_Invalid(t *testing.T) {
	for _, expr := range []string{"", "not a cron", "61 3 * * *", "0 3 * *"} {
		_, err := NextCronTime(expr, time.Now())
		assert.Error(t, err, "expression %q should not parse", expr)
	}
}
