package engine

import m "ilcheck/internal/model"

// messages holds the human-readable text per violation code. Codes
// without an entry fall back to their symbolic name in reports.
var messages = map[m.Code]string{
	m.CodeStackUnderflow:         "Stack underflow.",
	m.CodeStackOverflow:          "Stack depth exceeds the declared maximum.",
	m.CodeStackUnexpected:        "Unexpected type on the stack.",
	m.CodeExpectedNumericType:    "Expected numeric type on the stack.",
	m.CodeBranchOutOfBounds:      "Branch target is outside the method body.",
	m.CodeBranchTargetMisaligned: "Branch target is not an instruction boundary.",
	m.CodeReturnVoid:             "Return from a void method with a value on the stack.",
	m.CodeReturnMissing:          "Return value missing on the stack.",
	m.CodeReturnStackNotEmpty:    "Stack must be empty on return.",
	m.CodeCallArgCount:           "Call has an incorrect number of arguments on the stack.",
	m.CodeCallArgType:            "Call argument type mismatch.",
	m.CodeArgIndexOutOfRange:     "Argument index out of range.",
	m.CodeUnknownOpcode:          "Unknown opcode.",
	m.CodeTruncatedInstruction:   "Instruction is truncated by the end of the method body.",
	m.CodeMethodFallthrough:      "Control falls off the end of the method body.",
}

// Text looks up the message for a violation code.
func Text(code m.Code) (string, bool) {
	text, ok := messages[code]

	return text, ok
}
