package model

import "strings"

// Module is a parsed bytecode module: named type definitions, a string
// heap, and method definitions in on-disk declaration order.
type Module struct {
	Name    string
	Path    Path
	Types   []string
	Strings []string
	Methods []Method
}

// Method is a single method definition. Body is nil when the method
// has no executable body (abstract or extern), which is not an error.
type Method struct {
	Owner     string
	Name      string
	Signature string
	MaxStack  int
	Body      []byte
}

// HasBody reports whether the method carries an executable body.
func (m Method) HasBody() bool {
	return m.Body != nil
}

// Metadata token tables. Method tokens are derived from the method's
// position in the module, string tokens from the string heap position;
// indexes are 1-based inside a token.
const (
	TokenTableMethod uint32 = 0x06000000
	TokenTableString uint32 = 0x70000000

	tokenTableMask uint32 = 0xFF000000
	tokenIndexMask uint32 = 0x00FFFFFF
)

// MethodToken returns the metadata token for the method at index i.
func MethodToken(i int) uint32 {
	return TokenTableMethod | (uint32(i+1) & tokenIndexMask)
}

// StringToken returns the metadata token for the heap string at index i.
func StringToken(i int) uint32 {
	return TokenTableString | (uint32(i+1) & tokenIndexMask)
}

// MethodByToken resolves a method token against the module's method
// table. ok is false for a foreign table id or an out-of-range index.
func (m *Module) MethodByToken(token uint32) (Method, bool) {
	if token&tokenTableMask != TokenTableMethod {
		return Method{}, false
	}

	index := int(token&tokenIndexMask) - 1
	if index < 0 || index >= len(m.Methods) {
		return Method{}, false
	}

	return m.Methods[index], true
}

// StringByToken resolves a string token against the module's string heap.
func (m *Module) StringByToken(token uint32) (string, bool) {
	if token&tokenTableMask != TokenTableString {
		return "", false
	}

	index := int(token&tokenIndexMask) - 1
	if index < 0 || index >= len(m.Strings) {
		return "", false
	}

	return m.Strings[index], true
}

// MethodIdentity attributes a method for pattern matching and for
// diagnostic output. Derived from a module and one of its methods,
// never stored independently.
type MethodIdentity struct {
	ModulePath Path
	OwningType string
	Method     string
	Signature  string
}

// FullName returns the canonical string form used for filtering:
// owning type, "::", method name, and the argument list of the
// signature (the return type is dropped).
func (id MethodIdentity) FullName() string {
	args := id.Signature
	if paren := strings.Index(args, "("); paren >= 0 {
		args = args[paren:]
	}

	return id.OwningType + "::" + id.Method + args
}
