package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"remaining_configs": 4})

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("user not found")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "user not found", resp.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		UserID         int64 `validate:"required,gt=0"`
		RequestedCount int   `validate:"required,gt=0"`
	}

	v := validator.New()
	err := v.Struct(req{})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	resp := ValidationError(verrs)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "UserID")
	assert.Contains(t, resp.Error, "required")
}
