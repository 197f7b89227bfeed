// Package cpu implements the execution engine: a register file, an
// instruction dispatcher, and instance/static method dispatch over the
// types and assembly packages (spec.md §4.5-4.6).
package cpu

import (
	"io"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/statics"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// maxRegisterReferenceDepth bounds the recursion SetField and instance
// dispatch use to chase Value::RegisterReference chains, resolving
// spec.md §9's open question on that recursion's termination.
const maxRegisterReferenceDepth = 64

// ID identifies a CPU within a VM. CPUs share the heap, statics map, and
// assembly manager; only the register file is private to one CPU.
type ID uint64

// Config toggles optional runtime behavior.
type Config struct {
	// DynamicChecking makes invoke reject a call whose argument count
	// differs from the method's declared ArgTypes (DynamicCheckingFailed).
	// Argument types are not checked. Generic-constraint checking in
	// assembly.Manager.Instantiate does not read this flag; it always runs.
	DynamicChecking bool
	// Verbose is carried for embedders; the CPU itself emits no diagnostic
	// tracing (static-init logging goes through staticinit.Logger).
	Verbose bool
}

// CPU is a single execution context: a register file plus shared access
// to the assembly manager, managed heap, and VM-wide statics map.
type CPU struct {
	id      ID
	mgr     *assembly.Manager
	hp      *heap.Heap
	statics *statics.Map
	regs    *RegisterFile
	cfg     Config
	stdout  io.Writer
}

// New constructs a CPU sharing mgr/hp/st with every other CPU in the VM.
func New(id ID, mgr *assembly.Manager, hp *heap.Heap, st *statics.Map, cfg Config, stdout io.Writer) *CPU {
	return &CPU{
		id:      id,
		mgr:     mgr,
		hp:      hp,
		statics: st,
		regs:    newRegisterFile(),
		cfg:     cfg,
		stdout:  stdout,
	}
}

func (c *CPU) ID() ID { return c.id }

// Heap implements types.NativeContext.
func (c *CPU) Heap() *heap.Heap { return c.hp }

// Stdout implements types.NativeContext.
func (c *CPU) Stdout() io.Writer { return c.stdout }

// NewString implements types.NativeContext: allocates a fresh
// Reference(String) value.
func (c *CPU) NewString(s string) types.Value {
	h := heap.Alloc(c.hp, types.NewByRefString(s))
	return types.Reference(h)
}

// NewArray implements types.NativeContext: allocates a fresh
// Reference(Array) value.
func (c *CPU) NewArray(elem types.TypeHandle, items []types.Value) types.Value {
	arr := types.NewArray(elem, items)
	h := heap.Alloc(c.hp, types.NewByRefArray(arr))
	return types.Reference(h)
}

// NewObject implements types.NativeContext and backs the NewObject
// instruction: allocate an Object for typeRef, invoke its constructor,
// and return a Reference to it. The constructor must return Void.
func (c *CPU) NewObject(typeRef ident.TypeRef, ctor ident.MethodRef, args []types.Value) (types.Value, error) {
	handle, err := c.mgr.GetType(typeRef)
	if err != nil {
		return types.Value{}, err
	}
	if handle.Kind != types.HandleClass {
		return types.Value{}, vmerr.New(vmerr.UnsupportedObjectType, typeRef.String(), nil)
	}
	obj := types.NewObject(handle.MethodTableOf())
	h := heap.Alloc(c.hp, types.NewByRefObject(obj))
	receiver := types.Reference(h)

	ctorMethod, err := handle.MethodTableOf().GetMethod(ctor, c.resolveAgainst(nil))
	if err != nil {
		return types.Value{}, err
	}
	result, err := c.invoke(ctorMethod, receiver, args)
	if err != nil {
		return types.Value{}, err
	}
	if !result.IsVoid() {
		return types.Value{}, vmerr.New(vmerr.MethodReturnsAbnormally, ctor.String(), nil)
	}
	return receiver, nil
}

// CallInstance implements types.NativeContext: resolves receiver's
// runtime type, looks up method on it, and invokes it with receiver
// folded in as the native calling convention's implicit first argument.
func (c *CPU) CallInstance(receiver types.Value, method ident.MethodRef, args []types.Value) (types.Value, error) {
	handle, err := c.dynamicTypeOf(receiver, 0)
	if err != nil {
		return types.Value{}, err
	}
	mt := handle.MethodTableOf()
	if mt == nil {
		return types.Value{}, vmerr.New(vmerr.UnsupportedInstanceType, handle.String(), nil)
	}
	meth, err := mt.GetMethod(method, c.resolveAgainst(nil))
	if err != nil {
		return types.Value{}, err
	}
	return c.invoke(meth, receiver, args)
}

// CallStatic implements types.NativeContext.
func (c *CPU) CallStatic(typeRef ident.TypeRef, method ident.MethodRef, args []types.Value) (types.Value, error) {
	handle, err := c.mgr.GetType(typeRef)
	if err != nil {
		return types.Value{}, err
	}
	mt := handle.MethodTableOf()
	if mt == nil {
		return types.Value{}, vmerr.New(vmerr.UnsupportedInstanceType, handle.String(), nil)
	}
	meth, err := mt.GetMethod(method, c.resolveAgainst(nil))
	if err != nil {
		return types.Value{}, err
	}
	return c.invoke(meth, types.Void(), args)
}

// DynamicTypeOf implements types.NativeContext: a native body has no
// enclosing register frame, so window is always 0.
func (c *CPU) DynamicTypeOf(v types.Value) (types.TypeHandle, error) {
	return c.dynamicTypeOf(v, 0)
}

// resolveAgainst returns the generic-argument resolver GetMethod needs
// for a WithGeneric method_ref, scoped to the caller method's type
// variables when one is executing (nil at the top level, e.g. a
// native-initiated call with no enclosing bytecode frame).
func (c *CPU) resolveAgainst(caller *types.Method) func(ident.TypeRef) (types.TypeHandle, error) {
	if caller == nil {
		return func(tr ident.TypeRef) (types.TypeHandle, error) { return c.mgr.GetType(tr) }
	}
	return func(tr ident.TypeRef) (types.TypeHandle, error) { return c.mgr.SolveTypeRef(tr, caller) }
}

// invoke runs meth with this as the implicit receiver (Void for a static
// call) and args as the method's declared arguments. Native methods
// receive this prepended to args (the native calling convention);
// bytecode methods keep this and args separate, matching LoadArg's
// "args[arg]" semantics and SetField's "this" semantics (spec.md §4.5).
func (c *CPU) invoke(meth *types.Method, this types.Value, args []types.Value) (types.Value, error) {
	if c.cfg.DynamicChecking && len(args) != len(meth.ArgTypes) {
		got := vmerr.DynamicCheckArgLen{Got: len(args), Expected: len(meth.ArgTypes)}
		return types.Value{}, vmerr.New(vmerr.DynamicCheckingFailed, got.String(), nil)
	}
	if meth.Entry.Kind == types.EntryNative {
		nativeArgs := args
		if !meth.Attrs.Static {
			nativeArgs = append([]types.Value{this}, args...)
		}
		return meth.Entry.Native(c, nativeArgs)
	}
	return c.dispatchBytecode(meth, this, args)
}

// dynamicTypeOf resolves v's concrete runtime TypeHandle, following a
// RegisterReference chain relative to window (the current frame's
// register_start; 0 when there is no enclosing bytecode frame).
func (c *CPU) dynamicTypeOf(v types.Value, window int) (types.TypeHandle, error) {
	return c.dynamicTypeOfDepth(v, window, 0)
}

func (c *CPU) dynamicTypeOfDepth(v types.Value, window, depth int) (types.TypeHandle, error) {
	if depth > maxRegisterReferenceDepth {
		return types.TypeHandle{}, vmerr.New(vmerr.FailedReadRegister, "register reference depth exceeded", nil)
	}
	switch v.Kind() {
	case types.KindTrue, types.KindFalse:
		return c.coreType(ident.NameBoolean)
	case types.KindUInt8:
		return c.coreType(ident.NameUInt8)
	case types.KindUInt16:
		return c.coreType(ident.NameUInt16)
	case types.KindUInt32:
		return c.coreType(ident.NameUInt32)
	case types.KindUInt64:
		return c.coreType(ident.NameUInt64)
	case types.KindUInt128:
		return c.coreType(ident.NameUInt128)
	case types.KindInt8:
		return c.coreType(ident.NameInt8)
	case types.KindInt16:
		return c.coreType(ident.NameInt16)
	case types.KindInt32:
		return c.coreType(ident.NameInt32)
	case types.KindInt64:
		return c.coreType(ident.NameInt64)
	case types.KindInt128:
		return c.coreType(ident.NameInt128)
	case types.KindStruct:
		return v.Struct().MT.Owner, nil
	case types.KindReference:
		brv := v.Ref().Get()
		switch brv.Kind {
		case types.ByRefObject:
			return brv.Obj.MT.Owner, nil
		case types.ByRefArray:
			return c.arrayTypeOf(brv.Arr.ElemType)
		case types.ByRefString:
			return c.coreType(ident.NameString)
		default:
			return types.TypeHandle{}, vmerr.New(vmerr.UnsupportedInstanceType, "null", nil)
		}
	case types.KindRegisterReference:
		addr := isa.Reg(window + int(v.RegisterAddr()))
		inner, err := c.regs.Read(addr)
		if err != nil {
			return types.TypeHandle{}, err
		}
		return c.dynamicTypeOfDepth(inner, window, depth+1)
	default:
		return types.TypeHandle{}, vmerr.New(vmerr.UnsupportedInstanceType, v.Kind().String(), nil)
	}
}

func (c *CPU) coreType(name ident.Name) (types.TypeHandle, error) {
	return c.mgr.GetType(ident.CoreRef(name))
}

func (c *CPU) arrayTypeOf(elem types.TypeHandle) (types.TypeHandle, error) {
	base, err := c.coreType(ident.NameArray)
	if err != nil {
		return types.TypeHandle{}, err
	}
	order := []ident.Name{ident.ArrayTypeVar}
	return c.mgr.Instantiate(base, order, map[ident.Name]types.TypeHandle{ident.ArrayTypeVar: elem})
}

// Run implements CPU entry (spec.md §4.6): resolve the entry type (must
// be a Class), build the command-line argument array, and invoke Main.
func (c *CPU) Run(entryAssembly, entryType ident.Name, args []string) (uint64, error) {
	handle, err := c.mgr.GetType(ident.Single(entryAssembly, entryType))
	if err != nil {
		return 0, err
	}
	if handle.Kind == types.HandleStruct {
		return 0, vmerr.New(vmerr.UnsupportedEntryType, string(entryType), nil)
	}
	if handle.Kind != types.HandleClass {
		return 0, vmerr.New(vmerr.UnsupportedEntryType, string(entryType), nil)
	}

	stringType, err := c.coreType(ident.NameString)
	if err != nil {
		return 0, err
	}
	items := make([]types.Value, len(args))
	for i, a := range args {
		items[i] = c.NewString(a)
	}
	argsArray := c.NewArray(stringType, items)

	mt := handle.MethodTableOf()
	meth, err := mt.GetMethod(ident.SingleMethod(ident.MainMethodName()), c.resolveAgainst(nil))
	if err != nil {
		return 0, err
	}
	result, err := c.invoke(meth, types.Void(), []types.Value{argsArray})
	if err != nil {
		return 0, err
	}
	return c.translateReturn(result, 0)
}

func (c *CPU) translateReturn(v types.Value, depth int) (uint64, error) {
	if depth > maxRegisterReferenceDepth {
		return 0, vmerr.New(vmerr.FailedReadRegister, "register reference depth exceeded", nil)
	}
	switch v.Kind() {
	case types.KindVoid:
		return 0, nil
	case types.KindUInt64:
		return v.UInt(), nil
	case types.KindRegisterReference:
		addr := isa.Reg(v.RegisterAddr())
		inner, err := c.regs.Read(addr)
		if err != nil {
			return 0, err
		}
		return c.translateReturn(inner, depth+1)
	default:
		return 0, nil
	}
}
