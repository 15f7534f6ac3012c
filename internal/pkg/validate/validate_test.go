package validate

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Phone string `json:"phone" binding:"max=5"`
}

func TestMessageTranslatesFieldErrors(t *testing.T) {
	Setup()
	err := binding.Validator.ValidateStruct(&sample{Phone: "1234567"})
	require.Error(t, err)
	msg, ok := Message(err)
	require.True(t, ok)
	require.Contains(t, msg, "phone")
}

func TestMessageIgnoresOtherErrors(t *testing.T) {
	_, ok := Message(errors.New("unexpected EOF"))
	require.False(t, ok)
}
