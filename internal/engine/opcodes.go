// Package engine implements the bytecode verification engine. It is
// consumed by the driver through the Verifier interface only.
package engine

// Opcode is a single bytecode operation.
type Opcode byte

// The verifiable instruction set. Operand widths are fixed per opcode.
const (
	OpNop     Opcode = 0x00
	OpLdcI4   Opcode = 0x01 // int32 operand
	OpLdcI8   Opcode = 0x02 // int64 operand
	OpLdcR8   Opcode = 0x03 // float64 operand
	OpLdstr   Opcode = 0x04 // string token
	OpLdnull  Opcode = 0x05
	OpLdarg   Opcode = 0x06 // uint16 argument index
	OpPop     Opcode = 0x07
	OpDup     Opcode = 0x08
	OpAdd     Opcode = 0x09
	OpSub     Opcode = 0x0A
	OpMul     Opcode = 0x0B
	OpDiv     Opcode = 0x0C
	OpCeq     Opcode = 0x0D
	OpRet     Opcode = 0x0E
	OpBr      Opcode = 0x0F // int32 relative target
	OpBrtrue  Opcode = 0x10 // int32 relative target
	OpBrfalse Opcode = 0x11 // int32 relative target
	OpCall    Opcode = 0x12 // method token

	// opExtended prefixes the extended instruction set, which this
	// engine does not verify.
	opExtended Opcode = 0xFE
)

type opInfo struct {
	name    string
	operand int // operand width in bytes
}

var opcodes = map[Opcode]opInfo{
	OpNop:     {"nop", 0},
	OpLdcI4:   {"ldc.i4", 4},
	OpLdcI8:   {"ldc.i8", 8},
	OpLdcR8:   {"ldc.r8", 8},
	OpLdstr:   {"ldstr", 4},
	OpLdnull:  {"ldnull", 0},
	OpLdarg:   {"ldarg", 2},
	OpPop:     {"pop", 0},
	OpDup:     {"dup", 0},
	OpAdd:     {"add", 0},
	OpSub:     {"sub", 0},
	OpMul:     {"mul", 0},
	OpDiv:     {"div", 0},
	OpCeq:     {"ceq", 0},
	OpRet:     {"ret", 0},
	OpBr:      {"br", 4},
	OpBrtrue:  {"brtrue", 4},
	OpBrfalse: {"brfalse", 4},
	OpCall:    {"call", 4},
}

// Name returns the mnemonic for the opcode, or "??" when unknown.
func (o Opcode) Name() string {
	if info, ok := opcodes[o]; ok {
		return info.name
	}

	return "??"
}
