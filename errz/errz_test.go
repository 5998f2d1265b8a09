package errz_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepnoodle-ai/stratum/errz"
)

func TestErrorMessages(t *testing.T) {
	e := errz.NewInvalidArgument("compiler factory required")
	assert.Equal(t, "invalid argument: compiler factory required", e.Error())

	cause := errors.New("unexpected token")
	ce := errz.NewCompile("src-1", "parse failed", cause)
	assert.Contains(t, ce.Error(), "src-1")
	assert.ErrorIs(t, ce, cause)
}

func TestErrorsAsMatchesKind(t *testing.T) {
	var target *errz.Error
	err := error(errz.NewLoad("com.example.Foo", "class not found"))
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, errz.Load, target.Kind)
}
