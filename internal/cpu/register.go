package cpu

import (
	"strconv"
	"sync"

	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// Register is a single slot in a CPU's register file.
type Register struct {
	Value    types.Value
	Readable bool
	Writeable bool
}

func freshRegister() Register {
	return Register{Value: types.Void(), Readable: true, Writeable: true}
}

// RegisterFile is the dynamic sequence of value slots a CPU owns.
// Register 0 is the conventional first argument slot. Guarded by a
// reader-writer lock, matching spec.md §5's resource model (writes are
// rare relative to reads).
type RegisterFile struct {
	mu   sync.RWMutex
	regs []Register
}

func newRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Read returns the value at addr. Fails FailedGetRegister if addr is out
// of range, FailedReadRegister if the register exists but isn't
// currently readable.
func (rf *RegisterFile) Read(addr isa.Reg) (types.Value, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	if int(addr) >= len(rf.regs) {
		return types.Value{}, vmerr.New(vmerr.FailedGetRegister, regItem(addr), nil)
	}
	r := rf.regs[addr]
	if !r.Readable {
		return types.Value{}, vmerr.New(vmerr.FailedReadRegister, regItem(addr), nil)
	}
	return r.Value.CopyForTransit(), nil
}

// Write stores v at addr, growing the register file as needed. Fails
// FailedWriteRegister if the register exists but isn't writeable.
func (rf *RegisterFile) Write(addr isa.Reg, v types.Value) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	for int(addr) >= len(rf.regs) {
		rf.regs = append(rf.regs, freshRegister())
	}
	if !rf.regs[addr].Writeable {
		return vmerr.New(vmerr.FailedWriteRegister, regItem(addr), nil)
	}
	rf.regs[addr].Value = v.CopyForTransit()
	return nil
}

// FindContinuousEmptyStart finds the first index i such that
// R[i..i+length] are all currently Void with both flags set, growing the
// file if no such run exists yet. Used to allocate a method's local
// register window (spec.md §4.6).
func (rf *RegisterFile) FindContinuousEmptyStart(length int) int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if length == 0 {
		return len(rf.regs)
	}
	run := 0
	for i, r := range rf.regs {
		if r.Value.IsVoid() && r.Readable && r.Writeable {
			run++
			if run == length {
				return i - length + 1
			}
		} else {
			run = 0
		}
	}
	start := len(rf.regs)
	for len(rf.regs) < start+length {
		rf.regs = append(rf.regs, freshRegister())
	}
	return start
}

// Release resets the [start, start+length) window back to fresh (Void,
// Readable, Writeable) slots, freeing it for reuse by a later call —
// the register-file equivalent of popping a call frame.
func (rf *RegisterFile) Release(start, length int) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	for i := start; i < start+length && i < len(rf.regs); i++ {
		rf.regs[i] = freshRegister()
	}
}

func regItem(addr isa.Reg) string {
	return "R" + strconv.Itoa(int(addr))
}
