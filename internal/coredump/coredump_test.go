package coredump_test

import (
	"testing"

	"github.com/vanta-vm/vanta/internal/coredump"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
)

func TestTakeCountsByKindAndClass(t *testing.T) {
	hp := heap.New()

	mt := types.NewMethodTable(types.TypeHandle{}, nil)
	mt.Owner = types.ClassHandle(&types.Class{Name: ident.Name("Widget"), GeneralName: ident.Name("Widget"), MT: mt})

	obj1 := types.NewByRefObject(types.NewObject(mt))
	obj2 := types.NewByRefObject(types.NewObject(mt))
	str := types.NewByRefString("hi")

	h1 := heap.Alloc(hp, obj1)
	// Alloc roots every new allocation; unroot the other two so only h1
	// stays rooted.
	heap.Alloc(hp, obj2).Unroot()
	heap.Alloc(hp, str).Unroot()
	h1.Root()

	snap := coredump.Take(hp)
	if snap.Live != 3 {
		t.Fatalf("Live = %d, want 3", snap.Live)
	}
	if snap.Rooted != 1 {
		t.Fatalf("Rooted = %d, want 1", snap.Rooted)
	}

	var objectCount, stringCount int
	for _, kc := range snap.ByKind {
		switch kc.Kind {
		case types.ByRefObject:
			objectCount = kc.Count
		case types.ByRefString:
			stringCount = kc.Count
		}
	}
	if objectCount != 2 {
		t.Fatalf("object kind count = %d, want 2", objectCount)
	}
	if stringCount != 1 {
		t.Fatalf("string kind count = %d, want 1", stringCount)
	}

	if len(snap.ByClass) != 1 || snap.ByClass[0].Name != "Widget" || snap.ByClass[0].Count != 2 {
		t.Fatalf("ByClass = %+v, want one entry Widget:2", snap.ByClass)
	}
}

func TestKindStringCoversEveryVariant(t *testing.T) {
	cases := map[types.ByRefKind]string{
		types.ByRefObject: "object",
		types.ByRefArray:  "array",
		types.ByRefString: "string",
		types.ByRefNull:   "null",
	}
	for k, want := range cases {
		if got := coredump.KindString(k); got != want {
			t.Fatalf("KindString(%v) = %q, want %q", k, got, want)
		}
	}
}
