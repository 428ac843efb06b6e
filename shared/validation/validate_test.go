package validation

import (
	"testing"

	"finance-tracker/shared/models"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	UserID string `json:"userId" validate:"required"`
	Type   string `json:"type" validate:"required,notification_type"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{UserID: "u1", Type: "info", Limit: 10}))

	err := Struct(sample{Type: "loud", Limit: 500})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "field 'userId' failed 'required'")
	assert.Contains(t, err.Error(), "field 'type' failed 'notification_type'")
	assert.Contains(t, err.Error(), "field 'limit' failed 'max'")
}
