package corelib_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/cpu"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/statics"
	"github.com/vanta-vm/vanta/internal/types"
)

func newCPU(t *testing.T) *cpu.CPU {
	t.Helper()
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}
	if err := mgr.ResolveAll(); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	return cpu.New(0, mgr, heap.New(), statics.New(), cpu.Config{}, io.Discard)
}

func TestUInt64OpAddNative(t *testing.T) {
	c := newCPU(t)
	opAdd := ident.Name("__op_Add(" + ident.CoreRef(ident.NameUInt64).String() + ")")

	result, err := c.CallInstance(types.UInt64(3), ident.SingleMethod(opAdd), []types.Value{types.UInt64(4)})
	if err != nil {
		t.Fatalf("CallInstance(__op_Add): %v", err)
	}
	if got := result.UInt(); got != 7 {
		t.Fatalf("3 + 4 = %d, want 7", got)
	}
}

func TestStringArrayLengthAndIndex(t *testing.T) {
	c := newCPU(t)
	stringHandle := types.UnloadedHandle(ident.CoreRef(ident.NameString))
	arr := c.NewArray(stringHandle, []types.Value{c.NewString("a"), c.NewString("b")})

	length, err := c.CallInstance(arr, ident.SingleMethod("Length"), nil)
	if err != nil {
		t.Fatalf("CallInstance(Length): %v", err)
	}
	if got := length.UInt(); got != 2 {
		t.Fatalf("Length = %d, want 2", got)
	}

	idxName := ident.Name("__op_Index(" + ident.CoreRef(ident.NameUInt64).String() + ")")
	second, err := c.CallInstance(arr, ident.SingleMethod(idxName), []types.Value{types.UInt64(1)})
	if err != nil {
		t.Fatalf("CallInstance(__op_Index): %v", err)
	}
	ref := second.Ref().Get()
	if ref.Str != "b" {
		t.Fatalf("arr[1] = %q, want %q", ref.Str, "b")
	}
}

func TestConsoleWriteLineWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}
	if err := mgr.ResolveAll(); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	c := cpu.New(0, mgr, heap.New(), statics.New(), cpu.Config{}, &buf)

	s := c.NewString("hello")
	argRef := ident.CoreRef(ident.NameString)
	writeLine := ident.Name("WriteLine(" + argRef.String() + ")")
	if _, err := c.CallStatic(ident.CoreRef(ident.NameConsole), ident.SingleMethod(writeLine), []types.Value{s}); err != nil {
		t.Fatalf("CallStatic(Console.WriteLine): %v", err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Fatalf("stdout = %q, want %q", got, "hello\n")
	}
}
