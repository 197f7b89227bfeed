package runtimevm_test

import (
	"bytes"
	"testing"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/runtimevm"
	"github.com/vanta-vm/vanta/internal/types"
)

const entryAsm ident.Name = "EntryAsm"

func TestVMLoadRunEndToEnd(t *testing.T) {
	var out bytes.Buffer
	vm, err := runtimevm.New(runtimevm.Config{Stdout: &out})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mainName := ident.MainMethodName()
	methods := omap.New[ident.Name, loader.MethodDef]()
	methods.Set(mainName, loader.MethodDef{
		Name:       mainName,
		Attrs:      types.MethodAttributes{Static: true, RegisterCount: 1},
		ReturnType: ident.CoreRef(ident.NameUInt64),
		Args:       []ident.TypeRef{ident.CoreRef(ident.NameArray)},
		Instructions: []isa.Instruction{
			isa.LoadU64(0, 3),
			isa.ReturnVal(0),
		},
	})
	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Program", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Program",
		Methods: methods,
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})
	desc := loader.AssemblyDescriptor{Name: entryAsm, TypeDefs: typeDefs}

	if err := vm.LoadAssemblies([]loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("LoadAssemblies: %v", err)
	}
	if err := vm.LoadStatics(); err != nil {
		t.Fatalf("LoadStatics: %v", err)
	}

	code, err := vm.Run(entryAsm, "Program", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
}

func TestVMRunUnknownEntryAssemblyFails(t *testing.T) {
	vm, err := runtimevm.New(runtimevm.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := vm.Run("NoSuchAssembly", "Program", nil); err == nil {
		t.Fatal("Run against an unloaded assembly: want error, got nil")
	}
}
