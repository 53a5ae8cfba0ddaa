package attrs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	id := uuid.New()
	list := []any{"user_id", id, "step_type", "FIAT_UPLOAD", 42, "ignored", "step_number"}

	assert.Equal(t, id.String(), ExtractString(list, "user_id"))
	assert.Equal(t, "FIAT_UPLOAD", ExtractString(list, "step_type"))
	assert.Empty(t, ExtractString(list, "step_number"), "dangling key has no value")
	assert.Empty(t, ExtractString(list, "missing"))
}
