package engine

import (
	"fmt"

	m "ilcheck/internal/model"
)

// DiagnosticSink receives each violation as it is discovered. The
// engine keeps checking after a violation; a method can yield zero,
// one, or many diagnostics in a single pass.
type DiagnosticSink func(m.Diagnostic)

// Verifier runs one synchronous verification pass over a method body.
// A nil return means the pass ran to completion (diagnostics may still
// have been delivered through the sink). TokenError and
// UnsupportedError end the pass early without being verification
// violations themselves.
type Verifier interface {
	Verify(mod *m.Module, method m.Method, sink DiagnosticSink) error
}

// TokenError reports a metadata token that could not be resolved.
type TokenError struct {
	Token uint32
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("unable to resolve token 0x%08X", e.Token)
}

// UnsupportedError reports an instruction class the engine cannot
// verify on this platform.
type UnsupportedError struct {
	Offset uint32
	What   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s at offset 0x%08X", e.What, e.Offset)
}

// ILVerifier is the default Verifier. It needs the system module to
// anchor the primitive types every signature is resolved against.
type ILVerifier struct {
	system *m.Module
}

// NewVerifier builds a verifier over the given system module. It fails
// when the system module does not declare all primitive types, since
// no verification is meaningful without them.
func NewVerifier(system *m.Module) (*ILVerifier, error) {
	if system == nil {
		return nil, fmt.Errorf("system module is required")
	}

	declared := make(map[string]bool, len(system.Types))
	for _, name := range system.Types {
		declared[name] = true
	}

	for _, prim := range primitiveTypes {
		if !declared[prim] {
			return nil, fmt.Errorf("system module %s does not declare primitive type %q", system.Name, prim)
		}
	}

	return &ILVerifier{system: system}, nil
}
