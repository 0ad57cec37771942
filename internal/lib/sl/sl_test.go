package sl

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.KindString, attr.Value.Kind())
	assert.Equal(t, "something went wrong", attr.Value.String())
}

func TestUID(t *testing.T) {
	attr := UID(42)

	assert.Equal(t, "user_id", attr.Key)
	assert.Equal(t, int64(42), attr.Value.Int64())
}
