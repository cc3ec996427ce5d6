package consultation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValue_KeepsZeroSchedulingKeys(t *testing.T) {
	at := time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC)
	md := Metadata{
		IsAIScheduled:      true,
		ScheduledProcessAt: &at,
		DelayMinutes:       21,
	}

	v, err := md.Value()
	require.NoError(t, err)

	raw := string(v.([]byte))
	assert.Contains(t, raw, `"retry_count":0`)
	assert.Contains(t, raw, `"oracle_was_online":false`)
	assert.Contains(t, raw, `"is_ai_scheduled":true`)
	assert.NotContains(t, raw, `"last_error"`)
}

func TestMetadataScan_RoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 11, 14, 0, 0, 0, time.UTC)
	md := Metadata{IsAIScheduled: true, ScheduledProcessAt: &at, DelayMinutes: 21, RetryCount: 2}

	v, err := md.Value()
	require.NoError(t, err)

	var got Metadata
	require.NoError(t, got.Scan(v))
	assert.Equal(t, md, got)
}
