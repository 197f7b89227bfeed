// Package runtimevm provides the single stateful object an embedder
// drives: construct, load assemblies, run static initialization, then
// spawn CPUs against the shared type system and heap (spec.md §6's
// runtime host interface), modeled on program/server.Server's role as
// the one object an RPC/CLI layer calls into.
package runtimevm

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/cpu"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/staticinit"
	"github.com/vanta-vm/vanta/internal/statics"
)

// Config controls a VM's dynamic-checking strictness, diagnostic
// verbosity, and where CPUs spawned from it write Console output.
type Config struct {
	DynamicChecking bool
	Verbose         bool
	Stdout          io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c Config) log() staticinit.Logger {
	if !c.Verbose {
		return nil
	}
	return func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// VM holds the type system, heap, and statics map shared by every CPU
// spawned from it. mu serializes the load/load-statics/new-cpu sequence,
// matching program/server.Server's single sync.Mutex over shared state.
type VM struct {
	cfg Config

	mu       sync.Mutex
	mgr      *assembly.Manager
	hp       *heap.Heap
	st       *statics.Map
	nextCPU  cpu.ID
	statics  bool // true once LoadStatics has run
	loaded   bool
}

// New constructs a VM with the core assembly already built, ready to
// load user assemblies.
func New(cfg Config) (*VM, error) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		return nil, fmt.Errorf("build core library: %w", err)
	}
	return &VM{
		cfg: cfg,
		mgr: mgr,
		hp:  heap.New(),
		st:  statics.New(),
	}, nil
}

// LoadAssemblies loads every descriptor's types with Unloaded
// references, then resolves all of them against the now-complete type
// universe (core assembly plus every descriptor passed so far).
func (v *VM) LoadAssemblies(descs []loader.AssemblyDescriptor) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := loader.Load(v.mgr, descs); err != nil {
		return fmt.Errorf("load assemblies: %w", err)
	}
	if err := v.mgr.ResolveAll(); err != nil {
		return fmt.Errorf("resolve assemblies: %w", err)
	}
	v.loaded = true
	return nil
}

// LoadStatics invokes every loaded class/struct's static constructor in
// each assembly's declaration order (assemblies in no fixed order),
// populating the shared statics map. Must run after
// LoadAssemblies and before any CPU executes bytecode that reads a
// static field.
func (v *VM) LoadStatics() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := staticinit.LoadStatics(v.mgr, v.hp, v.st, v.cfg.Verbose, v.cfg.log()); err != nil {
		return fmt.Errorf("load statics: %w", err)
	}
	v.statics = true
	return nil
}

// NewCPU spawns a CPU sharing this VM's type system, heap, and statics
// map, with its own private register file.
func (v *VM) NewCPU() (cpu.ID, *cpu.CPU) {
	v.mu.Lock()
	id := v.nextCPU
	v.nextCPU++
	v.mu.Unlock()

	c := cpu.New(id, v.mgr, v.hp, v.st, cpu.Config{
		DynamicChecking: v.cfg.DynamicChecking,
		Verbose:         v.cfg.Verbose,
	}, v.cfg.stdout())
	return id, c
}

// Run is the convenience form of the host interface's full sequence for
// a single-shot embedder: spawn a CPU and invoke its entry point.
// Callers needing multiple concurrent CPUs should call NewCPU directly.
func (v *VM) Run(entryAssembly, entryType ident.Name, args []string) (uint64, error) {
	_, c := v.NewCPU()
	return c.Run(entryAssembly, entryType, args)
}

// Heap exposes the shared heap for diagnostics (e.g. a "heap-stats" CLI
// subcommand); it is not part of the host interface proper.
func (v *VM) Heap() *heap.Heap { return v.hp }

// Manager exposes the shared type-system manager for diagnostics (e.g. a
// disassembler walking every loaded method).
func (v *VM) Manager() *assembly.Manager { return v.mgr }
