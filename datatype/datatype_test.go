package datatype

import (
	"errors"
	"testing"

	"github.com/openarkit/armodel"
	"github.com/openarkit/armodel/arxml"
)

func newTestPackage(t *testing.T) (*armodel.Model, armodel.ArPackage) {
	t.Helper()
	m := armodel.NewModel(arxml.Autosar_00048)
	pkg, err := m.GetOrCreatePackage("/DataTypes")
	if err != nil {
		t.Fatalf("GetOrCreatePackage: %v", err)
	}
	return m, pkg
}

func TestSwBaseType(t *testing.T) {
	_, pkg := newTestPackage(t)
	base, err := NewSwBaseType(pkg, "uint8", 8, EncodingNone, "uint8")
	if err != nil {
		t.Fatalf("NewSwBaseType: %v", err)
	}
	if n, ok := base.BitLength(); !ok || n != 8 {
		t.Errorf("BitLength() = %d, %v", n, ok)
	}
	if enc, ok := base.Encoding(); !ok || enc != EncodingNone {
		t.Errorf("Encoding() = %v, %v", enc, ok)
	}
	if nd := base.NativeDeclaration(); nd != "uint8" {
		t.Errorf("NativeDeclaration() = %q", nd)
	}

	base.SetByteOrder(armodel.MostSignificantByteLast)
	if bo, ok := base.ByteOrder(); !ok || bo != armodel.MostSignificantByteLast {
		t.Errorf("ByteOrder() = %v, %v", bo, ok)
	}
	base.SetMemAlignment(8)
	if ma, ok := base.MemAlignment(); !ok || ma != 8 {
		t.Errorf("MemAlignment() = %d, %v", ma, ok)
	}

	if _, err := NewSwBaseType(pkg, "uint8", 8, EncodingNone, ""); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate base type: got %v, want ErrDuplicateName", err)
	}
}

func TestEncodingRoundTrip(t *testing.T) {
	for enc, name := range baseTypeEncodingNames {
		got, err := ParseBaseTypeEncoding(name)
		if err != nil {
			t.Fatalf("ParseBaseTypeEncoding(%q): %v", name, err)
		}
		if got != enc {
			t.Errorf("ParseBaseTypeEncoding(%q) = %v, want %v", name, got, enc)
		}
	}
}

func TestImplementationDataTypeValue(t *testing.T) {
	_, pkg := newTestPackage(t)
	base, _ := NewSwBaseType(pkg, "uint16", 16, EncodingNone, "uint16")

	impl, err := NewImplementationDataType(pkg, ValueSettings{Name: "Speed", BaseType: base})
	if err != nil {
		t.Fatalf("NewImplementationDataType: %v", err)
	}
	if got := impl.Category(); got != "VALUE" {
		t.Errorf("Category() = %q, want VALUE", got)
	}
	got, err := impl.BaseType()
	if err != nil {
		t.Fatalf("BaseType: %v", err)
	}
	if got != base {
		t.Errorf("BaseType() does not resolve to uint16")
	}
}

func TestImplementationDataTypeValidation(t *testing.T) {
	m, pkg := newTestPackage(t)
	base, _ := NewSwBaseType(pkg, "uint8", 8, EncodingNone, "")

	before, _ := arxml.DumpYAML(m.RootElement())
	cases := []struct {
		name     string
		settings ImplementationDataTypeSettings
	}{
		{"value without base type", ValueSettings{Name: "NoBase"}},
		{"value without name", ValueSettings{BaseType: base}},
		{"zero length array", ArraySettings{Name: "Arr", Length: 0, Element: ValueSettings{Name: "E", BaseType: base}}},
		{"array without element", ArraySettings{Name: "Arr", Length: 4}},
		{"empty structure", StructureSettings{Name: "Rec"}},
		{"structure with duplicate members", StructureSettings{Name: "Rec", Members: []ImplementationDataTypeSettings{
			ValueSettings{Name: "X", BaseType: base},
			ValueSettings{Name: "X", BaseType: base},
		}}},
		{"dangling type reference", TypeReferenceSettings{Name: "Alias"}},
	}
	for _, tc := range cases {
		if _, err := NewImplementationDataType(pkg, tc.settings); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
	after, _ := arxml.DumpYAML(m.RootElement())
	if d := arxml.Diff(before, after); d != "" {
		t.Errorf("rejected settings mutated the tree:\n%s", d)
	}
}

func TestImplementationDataTypeComposite(t *testing.T) {
	_, pkg := newTestPackage(t)
	base, _ := NewSwBaseType(pkg, "uint32", 32, EncodingNone, "")

	arr, err := NewImplementationDataType(pkg, ArraySettings{
		Name:    "Samples",
		Length:  16,
		Element: ValueSettings{Name: "Sample", BaseType: base},
	})
	if err != nil {
		t.Fatalf("array type: %v", err)
	}
	if n, ok := arr.ArraySize(); !ok || n != 16 {
		t.Errorf("ArraySize() = %d, %v", n, ok)
	}

	alias, err := NewImplementationDataType(pkg, TypeReferenceSettings{Name: "SamplesRef", Referenced: arr})
	if err != nil {
		t.Fatalf("type reference: %v", err)
	}
	got, err := alias.ReferencedType()
	if err != nil {
		t.Fatalf("ReferencedType: %v", err)
	}
	if got != arr {
		t.Errorf("ReferencedType() does not resolve to Samples")
	}

	rec, err := NewImplementationDataType(pkg, StructureSettings{
		Name: "Frame",
		Members: []ImplementationDataTypeSettings{
			ValueSettings{Name: "Id", BaseType: base},
			ValueSettings{Name: "Payload", BaseType: base},
		},
	})
	if err != nil {
		t.Fatalf("structure type: %v", err)
	}
	if got := rec.Category(); got != "STRUCTURE" {
		t.Errorf("Category() = %q, want STRUCTURE", got)
	}
}

func TestApplicationDataTypes(t *testing.T) {
	_, pkg := newTestPackage(t)
	prim, err := NewApplicationPrimitiveDataType(pkg, "Temperature", CategoryValue)
	if err != nil {
		t.Fatalf("NewApplicationPrimitiveDataType: %v", err)
	}
	if cat, ok := prim.Category(); !ok || cat != CategoryValue {
		t.Errorf("Category() = %v, %v", cat, ok)
	}

	arr, err := NewApplicationArrayDataType(pkg, "Temperatures", prim, 8)
	if err != nil {
		t.Fatalf("NewApplicationArrayDataType: %v", err)
	}
	if n, ok := arr.Size(); !ok || n != 8 {
		t.Errorf("Size() = %d, %v", n, ok)
	}
	elem, err := arr.ElementType()
	if err != nil {
		t.Fatalf("ElementType: %v", err)
	}
	if elem.Element() != prim.Element() {
		t.Errorf("ElementType() does not resolve to Temperature")
	}

	rec, err := NewApplicationRecordDataType(pkg, "Reading")
	if err != nil {
		t.Fatalf("NewApplicationRecordDataType: %v", err)
	}
	if _, err := rec.CreateRecordElement("Value", prim); err != nil {
		t.Fatalf("CreateRecordElement: %v", err)
	}
	if _, err := rec.CreateRecordElement("History", arr); err != nil {
		t.Fatalf("CreateRecordElement: %v", err)
	}
	if _, err := rec.CreateRecordElement("Value", prim); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("duplicate field: got %v, want ErrDuplicateName", err)
	}
	fields := rec.RecordElements()
	if len(fields) != 2 || fields[0].Name() != "Value" || fields[1].Name() != "History" {
		t.Errorf("RecordElements() wrong: %v", fields)
	}

	if _, err := NewApplicationArrayDataType(pkg, "Bad", nil, 4); !errors.Is(err, armodel.ErrInvalidValue) {
		t.Errorf("array without element type: got %v, want ErrInvalidValue", err)
	}
}

func TestDataTypeMappingSet(t *testing.T) {
	_, pkg := newTestPackage(t)
	base, _ := NewSwBaseType(pkg, "uint16", 16, EncodingNone, "")
	impl, _ := NewImplementationDataType(pkg, ValueSettings{Name: "SpeedImpl", BaseType: base})
	app, _ := NewApplicationPrimitiveDataType(pkg, "Speed", CategoryValue)

	set, err := NewDataTypeMappingSet(pkg, "Mappings")
	if err != nil {
		t.Fatalf("NewDataTypeMappingSet: %v", err)
	}
	if err := set.MapDataTypes(app, impl); err != nil {
		t.Fatalf("MapDataTypes: %v", err)
	}
	if err := set.MapDataTypes(app, impl); !errors.Is(err, armodel.ErrDuplicateName) {
		t.Errorf("second mapping of same type: got %v, want ErrDuplicateName", err)
	}

	got, err := set.MappedImplementationType(app)
	if err != nil {
		t.Fatalf("MappedImplementationType: %v", err)
	}
	if got != impl {
		t.Errorf("MappedImplementationType() does not resolve to SpeedImpl")
	}

	other, _ := NewApplicationPrimitiveDataType(pkg, "Rpm", CategoryValue)
	if _, err := set.MappedImplementationType(other); !errors.Is(err, armodel.ErrNotFound) {
		t.Errorf("unmapped type: got %v, want ErrNotFound", err)
	}
}
