package model

// Code identifies a class of verification violation.
type Code int

// Verification violation codes.
const (
	CodeUnknown Code = iota
	CodeStackUnderflow
	CodeStackOverflow
	CodeStackUnexpected
	CodeExpectedNumericType
	CodeBranchOutOfBounds
	CodeBranchTargetMisaligned
	CodeReturnVoid
	CodeReturnMissing
	CodeReturnStackNotEmpty
	CodeCallArgCount
	CodeCallArgType
	CodeArgIndexOutOfRange
	CodeUnknownOpcode
	CodeTruncatedInstruction
	CodeMethodFallthrough
	CodeSignatureBadType
)

var codeNames = map[Code]string{
	CodeUnknown:                "Unknown",
	CodeStackUnderflow:         "StackUnderflow",
	CodeStackOverflow:          "StackOverflow",
	CodeStackUnexpected:        "StackUnexpected",
	CodeExpectedNumericType:    "ExpectedNumericType",
	CodeBranchOutOfBounds:      "BranchOutOfBounds",
	CodeBranchTargetMisaligned: "BranchTargetMisaligned",
	CodeReturnVoid:             "ReturnVoid",
	CodeReturnMissing:          "ReturnMissing",
	CodeReturnStackNotEmpty:    "ReturnStackNotEmpty",
	CodeCallArgCount:           "CallArgCount",
	CodeCallArgType:            "CallArgType",
	CodeArgIndexOutOfRange:     "ArgIndexOutOfRange",
	CodeUnknownOpcode:          "UnknownOpcode",
	CodeTruncatedInstruction:   "TruncatedInstruction",
	CodeMethodFallthrough:      "MethodFallthrough",
	CodeSignatureBadType:       "SignatureBadType",
}

// String returns the symbolic name of the code. It doubles as the
// report text when no message is registered for the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return codeNames[CodeUnknown]
}

// Diagnostic is one reported verification violation. Found, Expected
// and Token are optional; a zero Token means no token context.
type Diagnostic struct {
	Code     Code
	Offset   uint32
	Found    string
	Expected string
	Token    uint32
}
