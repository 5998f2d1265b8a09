package bytecode

import "github.com/deepnoodle-ai/stratum/errz"

// Bytecode is a compiled class: its name and the compiled byte sequence for
// it. Both fields are required. A Bytecode is immutable once constructed;
// Bytes returns a defensive copy so callers cannot mutate shared state.
type Bytecode struct {
	className string
	bytes     []byte
}

// NewBytecode constructs a Bytecode, copying bytes so the caller's backing
// array cannot later mutate it. Returns an InvalidArgument error if
// className is empty or bytes is empty.
func NewBytecode(className string, bytes []byte) (*Bytecode, error) {
	if className == "" {
		return nil, errz.NewInvalidArgument("bytecode: class name is required")
	}
	if len(bytes) == 0 {
		return nil, errz.NewInvalidArgument("bytecode: bytes are required")
	}
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	return &Bytecode{className: className, bytes: cp}, nil
}

// ClassName returns the name of the compiled class.
func (b *Bytecode) ClassName() string {
	return b.className
}

// Bytes returns a copy of the compiled byte sequence.
func (b *Bytecode) Bytes() []byte {
	cp := make([]byte, len(b.bytes))
	copy(cp, b.bytes)
	return cp
}
