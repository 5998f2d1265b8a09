package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/stratum/bytecode"
)

func TestNewBytecodeRequiredFields(t *testing.T) {
	_, err := bytecode.NewBytecode("", []byte("x"))
	require.Error(t, err)

	_, err = bytecode.NewBytecode("A", nil)
	require.Error(t, err)

	bc, err := bytecode.NewBytecode("A", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "A", bc.ClassName())
	assert.Equal(t, []byte("x"), bc.Bytes())
}

func TestBytecodeBytesIsDefensiveCopy(t *testing.T) {
	src := []byte("hello")
	bc, err := bytecode.NewBytecode("A", src)
	require.NoError(t, err)

	src[0] = 'X'
	assert.Equal(t, []byte("hello"), bc.Bytes(), "mutating the constructor's slice must not affect Bytecode")

	out := bc.Bytes()
	out[0] = 'Y'
	assert.Equal(t, []byte("hello"), bc.Bytes(), "mutating a returned slice must not affect Bytecode")
}
