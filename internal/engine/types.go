package engine

import (
	"fmt"
	"strings"
)

// stackType is the abstract type of one evaluation stack slot.
type stackType int

const (
	// typeError marks a slot degraded by an earlier violation. It
	// satisfies every later check so one mistake is reported once.
	typeError stackType = iota
	typeBool
	typeInt32
	typeInt64
	typeFloat64
	typeString
	typeObject
	typeNull
)

var stackTypeNames = map[stackType]string{
	typeError:   "<error>",
	typeBool:    "bool",
	typeInt32:   "int32",
	typeInt64:   "int64",
	typeFloat64: "float64",
	typeString:  "string",
	typeObject:  "object",
	typeNull:    "null",
}

func (t stackType) String() string {
	return stackTypeNames[t]
}

// primitiveTypes are the type names the system module must declare.
// "void" is only valid as a return type.
var primitiveTypes = []string{"void", "bool", "int32", "int64", "float64", "string", "object"}

var typesByName = map[string]stackType{
	"bool":    typeBool,
	"int32":   typeInt32,
	"int64":   typeInt64,
	"float64": typeFloat64,
	"string":  typeString,
	"object":  typeObject,
}

func (t stackType) isNumeric() bool {
	switch t {
	case typeInt32, typeInt64, typeFloat64, typeError:
		return true
	case typeBool, typeString, typeObject, typeNull:
		return false
	}

	return false
}

// assignable reports whether a slot of type t satisfies want.
func assignable(t, want stackType) bool {
	if t == want || t == typeError {
		return true
	}

	// null is a valid value for any reference type.
	return t == typeNull && (want == typeString || want == typeObject)
}

// signature is the parsed form of the "ret(t1,t2)" signature string.
type signature struct {
	ret  string
	args []string
}

func (s signature) isVoid() bool {
	return s.ret == "void"
}

// parseSignature splits a raw signature string into return type and
// argument type names. It validates shape only; type names are checked
// against the system module by the verifier.
func parseSignature(raw string) (signature, error) {
	open := strings.Index(raw, "(")
	if open <= 0 || !strings.HasSuffix(raw, ")") {
		return signature{}, fmt.Errorf("malformed signature %q", raw)
	}

	sig := signature{ret: raw[:open]}

	inner := raw[open+1 : len(raw)-1]
	if inner == "" {
		return sig, nil
	}

	for _, arg := range strings.Split(inner, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" || arg == "void" {
			return signature{}, fmt.Errorf("malformed signature %q", raw)
		}

		sig.args = append(sig.args, arg)
	}

	return sig, nil
}
