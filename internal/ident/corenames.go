package ident

// Core type names, shared between internal/corelib (which builds the
// types) and internal/cpu (which needs to name a primitive Value's
// runtime type without constructing a new Name each time).
const (
	NameObject    Name = "System.Object"
	NameValueType Name = "System.ValueType"
	NameVoid      Name = "System.Void"
	NameBoolean   Name = "System.Boolean"
	NameEnum      Name = "System.Enum"
	NameString    Name = "System.String"
	NameConsole   Name = "System.Console"

	NameUInt8   Name = "System.UInt8"
	NameUInt16  Name = "System.UInt16"
	NameUInt32  Name = "System.UInt32"
	NameUInt64  Name = "System.UInt64"
	NameUInt128 Name = "System.UInt128"
	NameInt8    Name = "System.Int8"
	NameInt16   Name = "System.Int16"
	NameInt32   Name = "System.Int32"
	NameInt64   Name = "System.Int64"
	NameInt128  Name = "System.Int128"

	// NameArray is the generic array definition's name; instantiations are
	// printed as "[!]System.Array`1[@T:...]" via TypeRef.String().
	NameArray Name = "System.Array`1"
	// ArrayTypeVar is the sole type parameter name declared on NameArray.
	ArrayTypeVar Name = "T"
)

// CoreRef builds a Single TypeRef into the core assembly for one of the
// names above.
func CoreRef(name Name) TypeRef { return Single(CoreAssembly, name) }

// stringArrayRef is the canonical TypeRef of an array of strings, the sole
// parameter of every entry class's Main method (spec.md §6).
func stringArrayRef() TypeRef {
	return WithGeneric(CoreAssembly, NameArray, []Name{ArrayTypeVar}, map[Name]TypeRef{
		ArrayTypeVar: CoreRef(NameString),
	})
}

// MainMethodName returns the constant, signature-encoded method name every
// entry class's Main method is looked up by:
// "Main([!]System.Array`1[@T:[!]System.String])".
func MainMethodName() Name {
	return Name("Main(" + stringArrayRef().String() + ")")
}
