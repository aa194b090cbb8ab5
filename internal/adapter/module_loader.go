// Package adapter contains the infrastructure adapters for the
// verifier: the bytecode module reader/writer and the report store.
package adapter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	m "ilcheck/internal/model"
)

// Magic identifies a bytecode module file ("BCM1", little-endian).
const Magic uint32 = 0x314D4342

// FormatVersion is the container version this reader understands.
const FormatVersion uint16 = 1

// ErrBadModule marks a file that cannot be parsed as a bytecode module.
var ErrBadModule = errors.New("malformed bytecode module")

// methodHasBody is the method flag bit for an executable body.
const methodHasBody byte = 0x01

// ModuleLoader parses bytecode module files from disk.
type ModuleLoader interface {
	Load(path m.Path) (*m.Module, error)
}

// LocalModuleLoader reads modules from the local filesystem.
type LocalModuleLoader struct{}

// NewLocalModuleLoader constructs a LocalModuleLoader.
func NewLocalModuleLoader() *LocalModuleLoader {
	return &LocalModuleLoader{}
}

// Load parses the file at path. The module's simple name comes from
// the container header, not from the filename.
func (l *LocalModuleLoader) Load(path m.Path) (*m.Module, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	mod, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mod.Path = path

	return mod, nil
}

// Decode parses raw container bytes into a module.
func Decode(data []byte) (*m.Module, error) {
	r := &reader{data: data}

	magic := r.u32()
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08X", ErrBadModule, magic)
	}

	version := r.u16()
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadModule, version)
	}

	r.u16() // reserved flags

	mod := &m.Module{Name: r.str()}

	for n := r.count(); n > 0; n-- {
		mod.Types = append(mod.Types, r.str())
	}

	for n := r.count(); n > 0; n-- {
		mod.Strings = append(mod.Strings, r.str())
	}

	for n := r.count(); n > 0; n-- {
		owner := int(r.u16())

		method := m.Method{
			Name:      r.str(),
			Signature: r.str(),
			MaxStack:  int(r.u16()),
		}

		if owner < len(mod.Types) {
			method.Owner = mod.Types[owner]
		} else if r.err == nil {
			r.err = fmt.Errorf("%w: method %q owner index %d out of range", ErrBadModule, method.Name, owner)
		}

		if r.u8()&methodHasBody != 0 {
			method.Body = r.bytes(int(r.u32()))
		}

		mod.Methods = append(mod.Methods, method)
	}

	if r.err != nil {
		return nil, r.err
	}

	if r.pos != len(r.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadModule, len(r.data)-r.pos)
	}

	return mod, nil
}

// reader is a cursor over the container bytes. The first failure
// sticks; every later read returns zero values.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrBadModule, r.pos)
		return nil
	}

	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b
}

func (r *reader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *reader) count() int {
	return int(r.u16())
}

func (r *reader) str() string {
	return string(r.take(int(r.u16())))
}

func (r *reader) bytes(n int) []byte {
	b := r.take(n)
	if r.err != nil {
		return nil
	}

	out := make([]byte, n)
	copy(out, b)

	return out
}
