package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointID_Stable(t *testing.T) {
	first := pointID("service_A001_deadbeef")
	second := pointID("service_A001_deadbeef")
	other := pointID("service_A003_deadbeef")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestPayloadConversion_RoundTrip(t *testing.T) {
	payload := map[string]any{
		"type":    "service",
		"code":    "A001",
		"fee":     23.75,
		"page":    12,
		"active":  true,
		"ignored": nil,
	}

	converted := fromQdrantPayload(toQdrantPayload(payload))

	assert.Equal(t, "service", converted["type"])
	assert.Equal(t, "A001", converted["code"])
	assert.Equal(t, 23.75, converted["fee"])
	// integers travel as qdrant integers and come back as float64
	assert.Equal(t, float64(12), converted["page"])
	assert.Equal(t, true, converted["active"])
	assert.NotContains(t, converted, "ignored")
}
