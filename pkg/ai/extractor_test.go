package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleJSON(t *testing.T) {
	raw := `{"Monday": "Math, History", "Tuesday": "", "Funday": "Chaos", "Friday": " Art "}`
	schedule, err := parseScheduleJSON(raw)
	require.NoError(t, err)

	assert.Equal(t, "Math, History", schedule["Monday"])
	assert.Equal(t, "Art", schedule["Friday"])
	assert.NotContains(t, schedule, "Tuesday")
	assert.NotContains(t, schedule, "Funday")
}

func TestParseScheduleJSONFenced(t *testing.T) {
	raw := "```json\n{\"Wednesday\": \"PE\"}\n```"
	schedule, err := parseScheduleJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "PE", schedule["Wednesday"])
}

func TestParseScheduleJSONMalformed(t *testing.T) {
	_, err := parseScheduleJSON("not json")
	require.Error(t, err)
}
