package engine

import (
	"encoding/binary"
	"fmt"

	m "ilcheck/internal/model"
)

type instr struct {
	op      Opcode
	offset  uint32
	operand uint64
	next    uint32 // offset of the following instruction
}

func (in instr) i32() int32 {
	return int32(uint32(in.operand))
}

func (in instr) u16() uint16 {
	return uint16(in.operand)
}

func (in instr) token() uint32 {
	return uint32(in.operand)
}

// Verify runs the abstract interpretation pass over the method body.
// Violations go to sink; the pass continues past them. It returns
// early with TokenError or UnsupportedError, which are signals to the
// driver rather than violations.
func (v *ILVerifier) Verify(mod *m.Module, method m.Method, sink DiagnosticSink) error {
	sig, ok := v.checkSignature(mod, method.Signature, sink)
	if !ok {
		return nil
	}

	instrs, starts, clean, err := decode(method.Body, sink)
	if err != nil {
		return err
	}

	if err := v.simulate(mod, method, sig, instrs, starts, sink); err != nil {
		return err
	}

	if clean && !endsTerminally(instrs) {
		sink(m.Diagnostic{Code: m.CodeMethodFallthrough, Offset: uint32(len(method.Body))})
	}

	return nil
}

// checkSignature parses the method signature and resolves every type
// name against the module and the system module.
func (v *ILVerifier) checkSignature(mod *m.Module, raw string, sink DiagnosticSink) (signature, bool) {
	sig, err := parseSignature(raw)
	if err != nil {
		sink(m.Diagnostic{Code: m.CodeSignatureBadType, Found: raw})
		return signature{}, false
	}

	if !sig.isVoid() {
		if _, ok := v.typeOf(mod, sig.ret); !ok {
			sink(m.Diagnostic{Code: m.CodeSignatureBadType, Found: sig.ret})
			return signature{}, false
		}
	}

	for _, arg := range sig.args {
		if _, ok := v.typeOf(mod, arg); !ok {
			sink(m.Diagnostic{Code: m.CodeSignatureBadType, Found: arg})
			return signature{}, false
		}
	}

	return sig, true
}

// typeOf maps a signature type name to a stack type. Non-primitive
// names declared by the module or the system module are references.
func (v *ILVerifier) typeOf(mod *m.Module, name string) (stackType, bool) {
	if t, ok := typesByName[name]; ok {
		return t, true
	}

	for _, declared := range mod.Types {
		if declared == name {
			return typeObject, true
		}
	}

	for _, declared := range v.system.Types {
		if declared == name {
			return typeObject, true
		}
	}

	return typeError, false
}

// decode walks the raw body once, collecting instructions and the set
// of valid instruction start offsets. Undecodable bodies stop at the
// fault with a diagnostic; clean is false in that case so the caller
// skips the fallthrough check.
func decode(body []byte, sink DiagnosticSink) (instrs []instr, starts map[uint32]bool, clean bool, err error) {
	starts = make(map[uint32]bool)

	for pos := 0; pos < len(body); {
		offset := uint32(pos)
		op := Opcode(body[pos])

		if op == opExtended {
			return instrs, starts, false, &UnsupportedError{Offset: offset, What: "extended instruction prefix"}
		}

		info, known := opcodes[op]
		if !known {
			sink(m.Diagnostic{Code: m.CodeUnknownOpcode, Offset: offset, Found: fmt.Sprintf("0x%02X", byte(op))})
			return instrs, starts, false, nil
		}

		if pos+1+info.operand > len(body) {
			sink(m.Diagnostic{Code: m.CodeTruncatedInstruction, Offset: offset})
			return instrs, starts, false, nil
		}

		var operand uint64

		switch info.operand {
		case 2:
			operand = uint64(binary.LittleEndian.Uint16(body[pos+1:]))
		case 4:
			operand = uint64(binary.LittleEndian.Uint32(body[pos+1:]))
		case 8:
			operand = binary.LittleEndian.Uint64(body[pos+1:])
		}

		starts[offset] = true
		next := uint32(pos + 1 + info.operand)
		instrs = append(instrs, instr{op: op, offset: offset, operand: operand, next: next})
		pos = int(next)
	}

	return instrs, starts, true, nil
}

func endsTerminally(instrs []instr) bool {
	if len(instrs) == 0 {
		return false
	}

	last := instrs[len(instrs)-1].op

	return last == OpRet || last == OpBr
}

// sim tracks the evaluation stack during the linear pass.
type sim struct {
	stack            []stackType
	maxStack         int
	overflowReported bool
	sink             DiagnosticSink
}

func (s *sim) push(offset uint32, t stackType) {
	if len(s.stack) >= s.maxStack && !s.overflowReported {
		s.sink(m.Diagnostic{
			Code:     m.CodeStackOverflow,
			Offset:   offset,
			Expected: fmt.Sprintf("max stack %d", s.maxStack),
		})
		s.overflowReported = true
	}

	s.stack = append(s.stack, t)
}

func (s *sim) pop(offset uint32) stackType {
	if len(s.stack) == 0 {
		s.sink(m.Diagnostic{Code: m.CodeStackUnderflow, Offset: offset})
		return typeError
	}

	t := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	return t
}

func (s *sim) reset() {
	s.stack = s.stack[:0]
}

func (v *ILVerifier) simulate(mod *m.Module, method m.Method, sig signature, instrs []instr, starts map[uint32]bool, sink DiagnosticSink) error {
	s := &sim{maxStack: method.MaxStack, sink: sink}

	for _, in := range instrs {
		switch in.op {
		case OpNop:

		case OpLdcI4:
			s.push(in.offset, typeInt32)
		case OpLdcI8:
			s.push(in.offset, typeInt64)
		case OpLdcR8:
			s.push(in.offset, typeFloat64)
		case OpLdnull:
			s.push(in.offset, typeNull)

		case OpLdstr:
			if _, ok := mod.StringByToken(in.token()); !ok {
				return &TokenError{Token: in.token()}
			}

			s.push(in.offset, typeString)

		case OpLdarg:
			v.ldarg(mod, sig, in, s)

		case OpPop:
			s.pop(in.offset)
		case OpDup:
			t := s.pop(in.offset)
			s.push(in.offset, t)
			s.push(in.offset, t)

		case OpAdd, OpSub, OpMul, OpDiv:
			v.binop(in, s)
		case OpCeq:
			v.ceq(in, s)

		case OpBr, OpBrtrue, OpBrfalse:
			v.branch(method, in, starts, s)
			if in.op == OpBr {
				s.reset()
			}

		case OpCall:
			if err := v.call(mod, in, s); err != nil {
				return err
			}

		case OpRet:
			v.ret(sig, in, s)
			s.reset()
		}
	}

	return nil
}

func (v *ILVerifier) ldarg(mod *m.Module, sig signature, in instr, s *sim) {
	index := int(in.u16())
	if index >= len(sig.args) {
		s.sink(m.Diagnostic{
			Code:     m.CodeArgIndexOutOfRange,
			Offset:   in.offset,
			Found:    fmt.Sprintf("argument %d", index),
			Expected: fmt.Sprintf("%d argument(s)", len(sig.args)),
		})
		s.push(in.offset, typeError)

		return
	}

	t, _ := v.typeOf(mod, sig.args[index])
	s.push(in.offset, t)
}

func (v *ILVerifier) binop(in instr, s *sim) {
	right := s.pop(in.offset)
	left := s.pop(in.offset)

	for _, t := range []stackType{left, right} {
		if !t.isNumeric() {
			s.sink(m.Diagnostic{
				Code:     m.CodeExpectedNumericType,
				Offset:   in.offset,
				Found:    t.String(),
				Expected: "int32, int64 or float64",
			})
			s.push(in.offset, typeError)

			return
		}
	}

	if left != right && left != typeError && right != typeError {
		s.sink(m.Diagnostic{
			Code:     m.CodeStackUnexpected,
			Offset:   in.offset,
			Found:    right.String(),
			Expected: left.String(),
		})
		s.push(in.offset, typeError)

		return
	}

	if left == typeError || right == typeError {
		s.push(in.offset, typeError)
		return
	}

	s.push(in.offset, left)
}

func (v *ILVerifier) ceq(in instr, s *sim) {
	right := s.pop(in.offset)
	left := s.pop(in.offset)

	if !assignable(right, left) && !assignable(left, right) {
		s.sink(m.Diagnostic{
			Code:     m.CodeStackUnexpected,
			Offset:   in.offset,
			Found:    right.String(),
			Expected: left.String(),
		})
	}

	s.push(in.offset, typeBool)
}

func (v *ILVerifier) branch(method m.Method, in instr, starts map[uint32]bool, s *sim) {
	if in.op == OpBrtrue || in.op == OpBrfalse {
		cond := s.pop(in.offset)
		if cond != typeBool && cond != typeInt32 && cond != typeError {
			s.sink(m.Diagnostic{
				Code:     m.CodeStackUnexpected,
				Offset:   in.offset,
				Found:    cond.String(),
				Expected: "bool or int32",
			})
		}
	}

	target := int64(in.next) + int64(in.i32())
	if target < 0 || target >= int64(len(method.Body)) {
		s.sink(m.Diagnostic{
			Code:   m.CodeBranchOutOfBounds,
			Offset: in.offset,
			Found:  fmt.Sprintf("target 0x%08X", uint32(target)),
		})

		return
	}

	if !starts[uint32(target)] {
		s.sink(m.Diagnostic{
			Code:   m.CodeBranchTargetMisaligned,
			Offset: in.offset,
			Found:  fmt.Sprintf("target 0x%08X", uint32(target)),
		})
	}
}

func (v *ILVerifier) call(mod *m.Module, in instr, s *sim) error {
	callee, ok := mod.MethodByToken(in.token())
	if !ok {
		return &TokenError{Token: in.token()}
	}

	sig, err := parseSignature(callee.Signature)
	if err != nil {
		s.sink(m.Diagnostic{Code: m.CodeSignatureBadType, Offset: in.offset, Found: callee.Signature, Token: in.token()})
		return nil
	}

	if len(s.stack) < len(sig.args) {
		s.sink(m.Diagnostic{
			Code:     m.CodeCallArgCount,
			Offset:   in.offset,
			Found:    fmt.Sprintf("%d argument(s)", len(s.stack)),
			Expected: fmt.Sprintf("%d argument(s)", len(sig.args)),
			Token:    in.token(),
		})
		s.reset()
	} else {
		for i := len(sig.args) - 1; i >= 0; i-- {
			got := s.pop(in.offset)

			want, known := v.typeOf(mod, sig.args[i])
			if !known {
				continue
			}

			if !assignable(got, want) {
				s.sink(m.Diagnostic{
					Code:     m.CodeCallArgType,
					Offset:   in.offset,
					Found:    got.String(),
					Expected: want.String(),
					Token:    in.token(),
				})
			}
		}
	}

	if !sig.isVoid() {
		ret, known := v.typeOf(mod, sig.ret)
		if !known {
			ret = typeError
		}

		s.push(in.offset, ret)
	}

	return nil
}

func (v *ILVerifier) ret(sig signature, in instr, s *sim) {
	if sig.isVoid() {
		if len(s.stack) > 0 {
			s.sink(m.Diagnostic{
				Code:   m.CodeReturnVoid,
				Offset: in.offset,
				Found:  s.stack[len(s.stack)-1].String(),
			})
		}

		return
	}

	if len(s.stack) == 0 {
		s.sink(m.Diagnostic{
			Code:     m.CodeReturnMissing,
			Offset:   in.offset,
			Expected: sig.ret,
		})

		return
	}

	got := s.pop(in.offset)

	want, known := typesByName[sig.ret]
	if !known {
		want = typeObject
	}

	if !assignable(got, want) {
		s.sink(m.Diagnostic{
			Code:     m.CodeStackUnexpected,
			Offset:   in.offset,
			Found:    got.String(),
			Expected: want.String(),
		})
	}

	if len(s.stack) > 0 {
		s.sink(m.Diagnostic{Code: m.CodeReturnStackNotEmpty, Offset: in.offset})
	}
}
