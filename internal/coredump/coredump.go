// Package coredump provides diagnostic snapshots of a VM's managed heap:
// a breakdown of live allocations by kind and by owning class/struct
// name, for the "heap-stats" CLI subcommand.
//
// It plays the role internal/gocore plays for a ptrace'd core dump
// (Process.Stats's per-category breakdown, histogram.go's per-type
// counts) but walks this VM's own heap.Heap registry directly rather
// than a foreign process's memory image — there is no core file here,
// only the VM's live allocations.
package coredump

import (
	"sort"

	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/types"
)

// KindCount is the number of live allocations of one ByRefKind.
type KindCount struct {
	Kind  types.ByRefKind
	Count int
}

// ClassCount is the number of live Object allocations naming one class.
type ClassCount struct {
	Name  string
	Count int
}

// Snapshot summarizes a heap's contents at one point in time.
type Snapshot struct {
	Live    int
	Rooted  int
	ByKind  []KindCount
	ByClass []ClassCount
}

// Take walks h and builds a Snapshot. Safe to call concurrently with
// allocation on h (heap.Each takes h's read lock).
func Take(h *heap.Heap) Snapshot {
	kindCounts := make(map[types.ByRefKind]int)
	classCounts := make(map[string]int)
	live, rooted := 0, 0

	h.Each(func(_ heap.ID, payload heap.Tracer, isRoot bool) {
		live++
		if isRoot {
			rooted++
		}
		brv, ok := payload.(*types.ByRefValue)
		if !ok {
			return
		}
		kindCounts[brv.Kind]++
		if brv.Kind == types.ByRefObject && brv.Obj != nil {
			classCounts[string(brv.Obj.MT.Owner.Name())]++
		}
	})

	snap := Snapshot{Live: live, Rooted: rooted}
	for k, n := range kindCounts {
		snap.ByKind = append(snap.ByKind, KindCount{Kind: k, Count: n})
	}
	sort.Slice(snap.ByKind, func(i, j int) bool { return snap.ByKind[i].Kind < snap.ByKind[j].Kind })

	for name, n := range classCounts {
		snap.ByClass = append(snap.ByClass, ClassCount{Name: name, Count: n})
	}
	sort.Slice(snap.ByClass, func(i, j int) bool {
		if snap.ByClass[i].Count != snap.ByClass[j].Count {
			return snap.ByClass[i].Count > snap.ByClass[j].Count
		}
		return snap.ByClass[i].Name < snap.ByClass[j].Name
	})
	return snap
}

// KindString names a ByRefKind for display, since package types does not
// itself expose one.
func KindString(k types.ByRefKind) string {
	switch k {
	case types.ByRefObject:
		return "object"
	case types.ByRefArray:
		return "array"
	case types.ByRefString:
		return "string"
	case types.ByRefNull:
		return "null"
	default:
		return "?"
	}
}
