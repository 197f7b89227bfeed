// Package replshell implements an interactive line-editing shell over a
// runtimevm.VM, for exploring assembly loading and entry-point execution
// without re-invoking the CLI per step.
package replshell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/sys/unix"

	"github.com/vanta-vm/vanta/internal/asmjson"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/runtimevm"
)

// Shell holds the VM a session drives and the set of assembly names
// loaded into it so far.
type Shell struct {
	vm      *runtimevm.VM
	out     io.Writer
	loaded  []string
	statics bool
}

// New constructs a Shell over vm, writing command output to out.
func New(vm *runtimevm.VM, out io.Writer) *Shell {
	return &Shell{vm: vm, out: out}
}

// Run drives the shell until the user types "quit"/"exit" or sends EOF
// (Ctrl-D).
func (s *Shell) Run() error {
	rl, err := readline.New("vantavm> ")
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer rl.Close()

	// A second SIGINT (the first is swallowed by readline itself as
	// readline.ErrInterrupt on the current line) should close the
	// terminal cleanly rather than leave it in raw mode.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT)
	go func() {
		<-sigCh
		rl.Close()
	}()
	defer signal.Stop(sigCh)

	fmt.Fprintln(s.out, `vantavm repl. Type "help" for commands, "quit" to exit.`)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if s.dispatch(fields) {
			return nil
		}
	}
}

// dispatch runs one command and reports whether the shell should exit.
func (s *Shell) dispatch(fields []string) bool {
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		s.help()
	case "load":
		s.load(fields[1:])
	case "statics":
		s.runStatics()
	case "run":
		s.run(fields[1:])
	case "heap":
		s.heap()
	default:
		fmt.Fprintf(s.out, "unknown command %q, try \"help\"\n", fields[0])
	}
	return false
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `commands:
  load <file.json>          decode and load one assembly descriptor
  statics                   run static initialization over loaded assemblies
  run <assembly> <type> [args...]
                            invoke an entry point, printing its exit code
  heap                      print live/rooted allocation counts
  quit | exit               leave the shell
`)
}

func (s *Shell) load(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: load <file.json>")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	defer f.Close()

	desc, err := asmjson.Decode(f)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	if err := s.vm.LoadAssemblies([]loader.AssemblyDescriptor{desc}); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.loaded = append(s.loaded, string(desc.Name))
	fmt.Fprintf(s.out, "loaded assembly %q\n", desc.Name)
}

func (s *Shell) runStatics() {
	if err := s.vm.LoadStatics(); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.statics = true
	fmt.Fprintln(s.out, "static initialization complete")
}

func (s *Shell) run(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: run <assembly> <type> [args...]")
		return
	}
	if !s.statics {
		fmt.Fprintln(s.out, `warning: static initialization has not run; type "statics" first`)
	}
	code, err := s.vm.Run(ident.Name(args[0]), ident.Name(args[1]), args[2:])
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "exit code: %d\n", code)
}

func (s *Shell) heap() {
	s.vm.Heap().Collect()
	fmt.Fprintf(s.out, "live allocations: %d\n", s.vm.Heap().Len())
	fmt.Fprintf(s.out, "rooted allocations: %d\n", s.vm.Heap().Roots())
}
