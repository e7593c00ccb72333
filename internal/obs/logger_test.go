package obs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "production").Info("booking created", "booking_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booking created", line["msg"])
	assert.EqualValues(t, 7, line["booking_id"])
}

func TestNew_TextInDev(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "dev").Debug("room search", "hotel_id", 3)

	assert.Contains(t, buf.String(), "room search")
	assert.Contains(t, buf.String(), "hotel_id")
	assert.False(t, json.Valid(buf.Bytes()))
}
