package engine

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "ilcheck/internal/model"
)

func systemModule() *m.Module {
	return &m.Module{
		Name:  "corlib",
		Types: []string{"void", "bool", "int32", "int64", "float64", "string", "object"},
	}
}

func newTestVerifier(t *testing.T) *ILVerifier {
	t.Helper()

	v, err := NewVerifier(systemModule())
	require.NoError(t, err)

	return v
}

// body builds an instruction stream for tests.
type body struct {
	b []byte
}

func (bb *body) op(op Opcode) *body {
	bb.b = append(bb.b, byte(op))
	return bb
}

func (bb *body) i32(op Opcode, v int32) *body {
	bb.b = append(bb.b, byte(op))
	bb.b = binary.LittleEndian.AppendUint32(bb.b, uint32(v))

	return bb
}

func (bb *body) u16(op Opcode, v uint16) *body {
	bb.b = append(bb.b, byte(op))
	bb.b = binary.LittleEndian.AppendUint16(bb.b, v)

	return bb
}

func (bb *body) r8(v uint64) *body {
	bb.b = append(bb.b, byte(OpLdcR8))
	bb.b = binary.LittleEndian.AppendUint64(bb.b, v)

	return bb
}

func (bb *body) bytes() []byte {
	return bb.b
}

func method(sig string, maxStack int, b []byte) m.Method {
	return m.Method{Owner: "Foo", Name: "Bar", Signature: sig, MaxStack: maxStack, Body: b}
}

func verify(t *testing.T, mod *m.Module, meth m.Method) ([]m.Diagnostic, error) {
	t.Helper()

	v := newTestVerifier(t)

	var diags []m.Diagnostic

	err := v.Verify(mod, meth, func(d m.Diagnostic) {
		diags = append(diags, d)
	})

	return diags, err
}

func TestVerify_CleanAddMethod(t *testing.T) {
	b := (&body{}).u16(OpLdarg, 0).u16(OpLdarg, 1).op(OpAdd).op(OpRet).bytes()
	meth := method("int32(int32,int32)", 2, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestVerify_BinopTypeMismatch(t *testing.T) {
	// ldc.i4 1; ldc.r8 2.0; add -> int32 vs float64
	b := (&body{}).i32(OpLdcI4, 1).r8(0x4000000000000000).op(OpAdd).op(OpPop).op(OpRet).bytes()
	meth := method("void()", 2, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	assert.Equal(t, m.CodeStackUnexpected, diags[0].Code)
	assert.Equal(t, uint32(14), diags[0].Offset)
	assert.Equal(t, "float64", diags[0].Found)
	assert.Equal(t, "int32", diags[0].Expected)
}

func TestVerify_BinopNonNumeric(t *testing.T) {
	b := (&body{}).op(OpLdnull).op(OpLdnull).op(OpAdd).op(OpPop).op(OpRet).bytes()
	meth := method("void()", 2, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, m.CodeExpectedNumericType, diags[0].Code)
	assert.Equal(t, "null", diags[0].Found)
}

func TestVerify_StackUnderflow(t *testing.T) {
	b := (&body{}).op(OpPop).op(OpRet).bytes()
	meth := method("void()", 1, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, m.CodeStackUnderflow, diags[0].Code)
	assert.Equal(t, uint32(0), diags[0].Offset)
}

func TestVerify_MaxStackExceeded(t *testing.T) {
	b := (&body{}).i32(OpLdcI4, 1).i32(OpLdcI4, 2).i32(OpLdcI4, 3).op(OpPop).op(OpPop).op(OpPop).op(OpRet).bytes()
	meth := method("void()", 2, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, m.CodeStackOverflow, diags[0].Code)
	assert.Equal(t, uint32(10), diags[0].Offset)
}

func TestVerify_ReturnChecks(t *testing.T) {
	mod := &m.Module{Types: []string{"Foo"}}

	t.Run("missing return value", func(t *testing.T) {
		diags, err := verify(t, mod, method("int32()", 1, (&body{}).op(OpRet).bytes()))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeReturnMissing, diags[0].Code)
		assert.Equal(t, "int32", diags[0].Expected)
	})

	t.Run("value on void return", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 7).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeReturnVoid, diags[0].Code)
		assert.Equal(t, "int32", diags[0].Found)
	})

	t.Run("wrong return type", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 7).op(OpRet).bytes()
		diags, err := verify(t, mod, method("string()", 1, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeStackUnexpected, diags[0].Code)
		assert.Equal(t, "int32", diags[0].Found)
		assert.Equal(t, "string", diags[0].Expected)
	})

	t.Run("null return for reference type", func(t *testing.T) {
		b := (&body{}).op(OpLdnull).op(OpRet).bytes()
		diags, err := verify(t, mod, method("string()", 1, b))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("leftover stack on return", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 1).i32(OpLdcI4, 2).op(OpRet).bytes()
		diags, err := verify(t, mod, method("int32()", 2, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeReturnStackNotEmpty, diags[0].Code)
	})
}

func TestVerify_MethodFallthrough(t *testing.T) {
	b := (&body{}).i32(OpLdcI4, 1).op(OpPop).bytes()
	meth := method("void()", 1, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, m.CodeMethodFallthrough, diags[0].Code)
	assert.Equal(t, uint32(len(b)), diags[0].Offset)
}

func TestVerify_BranchTargets(t *testing.T) {
	mod := &m.Module{Types: []string{"Foo"}}

	t.Run("out of bounds", func(t *testing.T) {
		b := (&body{}).i32(OpBr, 100).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeBranchOutOfBounds, diags[0].Code)
	})

	t.Run("into the middle of an instruction", func(t *testing.T) {
		// br +1 lands inside the following ldc.i4 operand.
		b := (&body{}).i32(OpBr, 1).i32(OpLdcI4, 9).op(OpPop).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeBranchTargetMisaligned, diags[0].Code)
	})

	t.Run("backward branch is valid", func(t *testing.T) {
		// 0: ldc.i4 1; 5: brtrue -10 (back to 0); 10: ret
		b := (&body{}).i32(OpLdcI4, 1).i32(OpBrtrue, -10).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("condition must be bool or int32", func(t *testing.T) {
		b := (&body{}).op(OpLdnull).i32(OpBrtrue, -6).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeStackUnexpected, diags[0].Code)
		assert.Equal(t, "bool or int32", diags[0].Expected)
	})
}

func TestVerify_Call(t *testing.T) {
	callee := m.Method{Owner: "Foo", Name: "Callee", Signature: "int32(int32,string)"}
	mod := &m.Module{Types: []string{"Foo"}, Methods: []m.Method{callee}}
	token := m.MethodToken(0)

	t.Run("clean call", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 1).op(OpLdnull).i32(OpCall, int32(token)).op(OpPop).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 2, b))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("argument type mismatch", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 1).i32(OpLdcI4, 2).i32(OpCall, int32(token)).op(OpPop).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 2, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeCallArgType, diags[0].Code)
		assert.Equal(t, "int32", diags[0].Found)
		assert.Equal(t, "string", diags[0].Expected)
		assert.Equal(t, token, diags[0].Token)
	})

	t.Run("not enough arguments", func(t *testing.T) {
		b := (&body{}).i32(OpLdcI4, 1).i32(OpCall, int32(token)).op(OpPop).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 2, b))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeCallArgCount, diags[0].Code)
	})

	t.Run("unresolvable method token", func(t *testing.T) {
		b := (&body{}).i32(OpCall, int32(m.TokenTableMethod|0x42)).op(OpRet).bytes()
		diags, err := verify(t, mod, method("void()", 1, b))

		var tokenErr *TokenError
		require.ErrorAs(t, err, &tokenErr)
		assert.Equal(t, m.TokenTableMethod|0x42, tokenErr.Token)
		assert.Empty(t, diags)
	})
}

func TestVerify_Ldstr(t *testing.T) {
	mod := &m.Module{Types: []string{"Foo"}, Strings: []string{"hello"}}

	t.Run("resolves heap string", func(t *testing.T) {
		b := (&body{}).i32(OpLdstr, int32(m.StringToken(0))).op(OpRet).bytes()
		diags, err := verify(t, mod, method("string()", 1, b))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})

	t.Run("unresolvable string token", func(t *testing.T) {
		b := (&body{}).i32(OpLdstr, int32(m.StringToken(5))).op(OpRet).bytes()
		_, err := verify(t, mod, method("string()", 1, b))

		var tokenErr *TokenError
		require.ErrorAs(t, err, &tokenErr)
	})
}

func TestVerify_DecodeFailures(t *testing.T) {
	mod := &m.Module{Types: []string{"Foo"}}

	t.Run("unknown opcode", func(t *testing.T) {
		diags, err := verify(t, mod, method("void()", 1, []byte{0x7F}))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeUnknownOpcode, diags[0].Code)
		assert.Equal(t, "0x7F", diags[0].Found)
	})

	t.Run("truncated operand", func(t *testing.T) {
		diags, err := verify(t, mod, method("void()", 1, []byte{byte(OpLdcI4), 0x01}))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeTruncatedInstruction, diags[0].Code)
	})

	t.Run("extended prefix is unsupported", func(t *testing.T) {
		diags, err := verify(t, mod, method("void()", 1, []byte{0xFE, 0x01}))

		var unsupported *UnsupportedError
		require.ErrorAs(t, err, &unsupported)
		assert.Empty(t, diags)
	})
}

func TestVerify_LdargOutOfRange(t *testing.T) {
	b := (&body{}).u16(OpLdarg, 3).op(OpPop).op(OpRet).bytes()
	meth := method("void(int32)", 1, b)

	diags, err := verify(t, &m.Module{Types: []string{"Foo"}}, meth)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, m.CodeArgIndexOutOfRange, diags[0].Code)
}

func TestVerify_BadSignature(t *testing.T) {
	mod := &m.Module{Types: []string{"Foo"}}

	t.Run("unparseable", func(t *testing.T) {
		diags, err := verify(t, mod, method("garbage", 1, []byte{byte(OpRet)}))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeSignatureBadType, diags[0].Code)
	})

	t.Run("undeclared type name", func(t *testing.T) {
		diags, err := verify(t, mod, method("Missing()", 1, []byte{byte(OpRet)}))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, m.CodeSignatureBadType, diags[0].Code)
		assert.Equal(t, "Missing", diags[0].Found)
	})

	t.Run("declared class is a valid reference type", func(t *testing.T) {
		b := (&body{}).op(OpLdnull).op(OpRet).bytes()
		diags, err := verify(t, mod, method("Foo()", 1, b))
		require.NoError(t, err)
		assert.Empty(t, diags)
	})
}

func TestNewVerifier_RequiresPrimitives(t *testing.T) {
	_, err := NewVerifier(&m.Module{Name: "corlib", Types: []string{"void", "int32"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primitive type")

	_, err = NewVerifier(nil)
	require.Error(t, err)
}

func TestParseSignature(t *testing.T) {
	sig, err := parseSignature("int32(int32,string)")
	require.NoError(t, err)
	assert.Equal(t, "int32", sig.ret)
	assert.Equal(t, []string{"int32", "string"}, sig.args)

	sig, err = parseSignature("void()")
	require.NoError(t, err)
	assert.True(t, sig.isVoid())
	assert.Empty(t, sig.args)

	for _, raw := range []string{"", "()", "int32", "int32(", "int32(void)", "int32(,)"} {
		_, err := parseSignature(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
