package adapter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	m "ilcheck/internal/model"
)

// Encode serializes a module into container bytes. It is the inverse
// of Decode and backs the sample generator and the test fixtures.
func Encode(mod *m.Module) ([]byte, error) {
	w := &writer{}

	w.u32(Magic)
	w.u16(FormatVersion)
	w.u16(0) // reserved flags
	w.str(mod.Name)

	w.count(len(mod.Types))
	for _, name := range mod.Types {
		w.str(name)
	}

	w.count(len(mod.Strings))
	for _, s := range mod.Strings {
		w.str(s)
	}

	w.count(len(mod.Methods))

	for _, method := range mod.Methods {
		owner := typeIndex(mod.Types, method.Owner)
		if owner < 0 {
			return nil, fmt.Errorf("method %s::%s: owner type not declared", method.Owner, method.Name)
		}

		w.u16(uint16(owner))
		w.str(method.Name)
		w.str(method.Signature)
		w.u16(uint16(method.MaxStack))

		if method.HasBody() {
			w.u8(methodHasBody)
			w.u32(uint32(len(method.Body)))
			w.raw(method.Body)
		} else {
			w.u8(0)
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	return w.buf.Bytes(), nil
}

// SaveModule encodes mod and writes it to path.
func SaveModule(path m.Path, mod *m.Module) error {
	data, err := Encode(mod)
	if err != nil {
		return err
	}

	return os.WriteFile(string(path), data, 0o644)
}

func typeIndex(types []string, name string) int {
	for i, t := range types {
		if t == name {
			return i
		}
	}

	return -1
}

type writer struct {
	buf bytes.Buffer
	err error
}

func (w *writer) u8(v byte) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	var b [2]byte

	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) count(n int) {
	if n > math.MaxUint16 && w.err == nil {
		w.err = fmt.Errorf("table of %d entries exceeds the container limit", n)
	}

	w.u16(uint16(n))
}

func (w *writer) str(s string) {
	if len(s) > math.MaxUint16 && w.err == nil {
		w.err = fmt.Errorf("string of %d bytes exceeds the container limit", len(s))
	}

	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}
