package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputSplitsStructuredAndHuman(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human, LevelTrace)

	Structured().Info("structured line", "key", "value")
	HumanReadable().Info("human line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "structured line", entry["msg"])
	assert.Equal(t, "value", entry["key"])

	assert.Contains(t, human.String(), "human line")
	assert.NotContains(t, human.String(), "structured line")
}

func TestForServiceAddsServiceAttribute(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human, LevelTrace)

	ForService("audiocore").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "audiocore", entry["service"])
}

func TestCustomLevelNames(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human, LevelTrace)

	Trace("very detailed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "TRACE", entry["level"])
}
