package asmjson_test

import (
	"strings"
	"testing"

	"github.com/vanta-vm/vanta/internal/asmjson"
	"github.com/vanta-vm/vanta/internal/isa"
)

const fixture = `{
  "name": "Demo",
  "type_defs": [
    {
      "kind": "class",
      "name": "Program",
      "attrs": {"Visibility": 0, "Abstract": false},
      "methods": [
        {
          "name": "Main([!]System.Array` + "`" + `1[@T:[!]System.String])",
          "attrs": {"Visibility": 0, "Static": true, "RegisterCount": 1},
          "return_type": {"Kind": 0, "Assembly": "!", "Type": "System.UInt64"},
          "args": [],
          "instructions": [
            {"Op": 4, "Dst": 0, "U64": 9},
            {"Op": 11, "Src": 0}
          ]
        }
      ],
      "fields": []
    }
  ]
}`

func TestDecodeRoundTripsMinimalAssembly(t *testing.T) {
	desc, err := asmjson.Decode(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if desc.Name != "Demo" {
		t.Fatalf("Name = %q, want Demo", desc.Name)
	}
	td, ok := desc.TypeDefs.Get("Program")
	if !ok {
		t.Fatal("type def \"Program\" missing after decode")
	}
	if td.Methods.Len() != 1 {
		t.Fatalf("Methods.Len() = %d, want 1", td.Methods.Len())
	}
	var got *isa.Instruction
	for _, name := range td.Methods.Keys() {
		md, _ := td.Methods.Get(name)
		if len(md.Instructions) != 2 {
			t.Fatalf("Instructions len = %d, want 2", len(md.Instructions))
		}
		got = &md.Instructions[0]
	}
	if got.Op != isa.OpLoadU64 || got.U64 != 9 {
		t.Fatalf("first instruction = %+v, want LoadU64 9", got)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	bad := `{"name":"Demo","type_defs":[{"kind":"enum","name":"X","methods":[],"fields":[]}]}`
	if _, err := asmjson.Decode(strings.NewReader(bad)); err == nil {
		t.Fatal("Decode with an unknown type_def kind: want error, got nil")
	}
}
