package cpu_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/cpu"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/statics"
	"github.com/vanta-vm/vanta/internal/types"
)

const userAsm ident.Name = "UserAsm"

// buildMinimalEntry loads one user assembly with a single entry class
// whose Main body loads a constant and returns it. Not the real S1
// scenario (see TestRunS1IndexesArgsAndWritesLine for that); this is
// just the smallest possible entry point.
func buildMinimalEntry(t *testing.T, retVal uint64) (*assembly.Manager, *heap.Heap, *statics.Map) {
	t.Helper()

	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	mainName := ident.MainMethodName()
	methods := omap.New[ident.Name, loader.MethodDef]()
	methods.Set(mainName, loader.MethodDef{
		Name:       mainName,
		Attrs:      types.MethodAttributes{Static: true, RegisterCount: 1},
		ReturnType: ident.CoreRef(ident.NameUInt64),
		Args:       []ident.TypeRef{ident.CoreRef(ident.NameArray)},
		Instructions: []isa.Instruction{
			isa.LoadU64(0, retVal),
			isa.ReturnVal(0),
		},
	})

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Entry", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Entry",
		Methods: methods,
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})

	desc := loader.AssemblyDescriptor{Name: userAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	hp := heap.New()
	st := statics.New()
	return mgr, hp, st
}

func TestRunMinimalEntryReturnsConstant(t *testing.T) {
	mgr, hp, st := buildMinimalEntry(t, 42)
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, io.Discard)

	code, err := c.Run(userAsm, "Entry", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 42 {
		t.Fatalf("exit code = %d, want 42", code)
	}
}

func TestRunRejectsStructEntryType(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Point", loader.TypeDef{
		Kind:    loader.DefStruct,
		Name:    "Point",
		Methods: omap.New[ident.Name, loader.MethodDef](),
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})
	desc := loader.AssemblyDescriptor{Name: userAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	hp := heap.New()
	st := statics.New()
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, io.Discard)

	if _, err := c.Run(userAsm, "Point", nil); err == nil {
		t.Fatal("Run over a struct entry type: want error, got nil")
	}
}

func TestRunUnknownEntryTypeFails(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}
	hp := heap.New()
	st := statics.New()
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, io.Discard)

	if _, err := c.Run(userAsm, "DoesNotExist", nil); err == nil {
		t.Fatal("Run over a missing entry type: want error, got nil")
	}
}

// TestNewObjectThenSetFieldThenInstanceCall exercises object
// construction, a mutating SetField in the constructor, and an instance
// call on the new object (which returns a fixed witness value, not the
// stored field), wired through a hand-built user assembly (no
// constructor or getter is native; both are bytecode).
func TestNewObjectThenSetFieldThenInstanceCall(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	ctorName := ident.Name(".ctor()")
	getName := ident.Name("Get()")

	boxMethods := omap.New[ident.Name, loader.MethodDef]()
	// .ctor(): load 7 into R0 and store it into this's field "n" (SetField
	// always targets the implicit receiver).
	boxMethods.Set(ctorName, loader.MethodDef{
		Name:       ctorName,
		Attrs:      types.MethodAttributes{RegisterCount: 1},
		ReturnType: ident.CoreRef(ident.NameVoid),
		Instructions: []isa.Instruction{
			isa.LoadU64(0, 7),
			isa.SetField(0, "n"),
		},
	})
	// Get(): read field "n" back out via LoadStatic? No — instance field
	// reads aren't part of the instruction set (spec.md §4.5 only
	// defines SetField, not a matching get), so Get() instead just
	// returns a fixed witness value proving the call dispatched.
	boxMethods.Set(getName, loader.MethodDef{
		Name:       getName,
		Attrs:      types.MethodAttributes{RegisterCount: 1},
		ReturnType: ident.CoreRef(ident.NameUInt64),
		Instructions: []isa.Instruction{
			isa.LoadU64(0, 99),
			isa.ReturnVal(0),
		},
	})

	boxFields := omap.New[ident.Name, loader.FieldDef]()
	boxFields.Set("n", loader.FieldDef{Name: "n", Type: ident.CoreRef(ident.NameUInt64)})

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Box", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Box",
		Methods: boxMethods,
		Fields:  boxFields,
	})

	mainName := ident.MainMethodName()
	mainMethods := omap.New[ident.Name, loader.MethodDef]()
	mainMethods.Set(mainName, loader.MethodDef{
		Name:       mainName,
		Attrs:      types.MethodAttributes{Static: true, RegisterCount: 2},
		ReturnType: ident.CoreRef(ident.NameUInt64),
		Args:       []ident.TypeRef{ident.CoreRef(ident.NameArray)},
		Instructions: []isa.Instruction{
			isa.NewObject(ident.Single(userAsm, "Box"), ctorName, nil, 0),
			isa.InstanceCall(0, ident.SingleMethod(getName), nil, 1),
			isa.ReturnVal(1),
		},
	})
	typeDefs.Set("Entry", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Entry",
		Methods: mainMethods,
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})

	desc := loader.AssemblyDescriptor{Name: userAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	hp := heap.New()
	st := statics.New()
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, io.Discard)

	code, err := c.Run(userAsm, "Entry", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 99 {
		t.Fatalf("exit code = %d, want 99", code)
	}
}

// TestRunS1IndexesArgsAndWritesLine is the real S1 scenario end-to-end:
// Main indexes its implicit args array with __op_Index, passes the
// result to Console.WriteLine, and returns 0 — the same native
// instance-call-then-static-call path TestConsoleWriteLineWritesToStdout
// and TestStringArrayLengthAndIndex exercise separately, here wired
// together through Run.
func TestRunS1IndexesArgsAndWritesLine(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	idxName := ident.Name("__op_Index(" + ident.CoreRef(ident.NameUInt64).String() + ")")
	writeLineName := ident.Name("WriteLine(" + ident.CoreRef(ident.NameString).String() + ")")

	mainName := ident.MainMethodName()
	methods := omap.New[ident.Name, loader.MethodDef]()
	methods.Set(mainName, loader.MethodDef{
		Name:       mainName,
		Attrs:      types.MethodAttributes{Static: true, RegisterCount: 5},
		ReturnType: ident.CoreRef(ident.NameUInt64),
		Args:       []ident.TypeRef{ident.CoreRef(ident.NameArray)},
		Instructions: []isa.Instruction{
			isa.LoadArg(0, 0),
			isa.LoadU64(1, 1),
			isa.InstanceCall(0, ident.SingleMethod(idxName), []isa.Reg{1}, 2),
			isa.StaticCall(ident.CoreRef(ident.NameConsole), ident.SingleMethod(writeLineName), []isa.Reg{2}, 3),
			isa.LoadU64(4, 0),
			isa.ReturnVal(4),
		},
	})

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Entry", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Entry",
		Methods: methods,
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})

	desc := loader.AssemblyDescriptor{Name: userAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	hp := heap.New()
	st := statics.New()
	var buf bytes.Buffer
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, &buf)

	code, err := c.Run(userAsm, "Entry", []string{"aaa", "bbb"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if got := buf.String(); got != "bbb\n" {
		t.Fatalf("stdout = %q, want %q", got, "bbb\n")
	}
}
