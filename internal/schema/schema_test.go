package schema

import (
	"errors"
	"testing"

	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/value"
)

func TestAddOrGetField_AdoptsNullType(t *testing.T) {
	s := New("widgets")

	f, err := s.AddOrGetField("count", value.KindNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.DataType() != value.KindNumber {
		t.Fatalf("expected dataType=number, got %v", f.DataType())
	}
	if f.IsTokenized() {
		t.Fatal("expected number field to not be tokenized")
	}
}

func TestAddOrGetField_TextIsTokenized(t *testing.T) {
	s := New("widgets")

	f, err := s.AddOrGetField("title", value.KindText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsTokenized() {
		t.Fatal("expected text field to be tokenized")
	}
}

func TestAddOrGetField_SameTypeAccepted(t *testing.T) {
	s := New("widgets")

	if _, err := s.AddOrGetField("count", value.KindNumber); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AddOrGetField("count", value.KindNumber); err != nil {
		t.Fatalf("unexpected error on repeat adoption: %v", err)
	}
}

func TestAddOrGetField_NullIncomingAccepted(t *testing.T) {
	s := New("widgets")

	if _, err := s.AddOrGetField("count", value.KindNumber); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AddOrGetField("count", value.KindNull); err != nil {
		t.Fatalf("unexpected error on null incoming: %v", err)
	}
	f, _ := s.Field("count")
	if f.DataType() != value.KindNumber {
		t.Fatalf("expected dataType to remain number, got %v", f.DataType())
	}
}

func TestAddOrGetField_ConflictSkipsType(t *testing.T) {
	s := New("widgets")

	if _, err := s.AddOrGetField("count", value.KindNumber); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := s.AddOrGetField("count", value.KindText)
	if err == nil {
		t.Fatal("expected schema conflict error")
	}
	if !errors.Is(err, domain.ErrSchemaConflict) {
		t.Fatalf("expected ErrSchemaConflict, got %v", err)
	}
	if f.DataType() != value.KindNumber {
		t.Fatalf("expected dataType to remain number after conflict, got %v", f.DataType())
	}
}

func TestFields_PreservesInsertionOrder(t *testing.T) {
	s := New("widgets")
	_, _ = s.AddOrGetField("b", value.KindText)
	_, _ = s.AddOrGetField("a", value.KindText)
	_, _ = s.AddOrGetField("c", value.KindText)

	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	want := []string{"b", "a", "c"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("fields out of order: got %v, want %v", names, want)
		}
	}
}

func TestAdoptArrayElementType_ConflictSkipsElement(t *testing.T) {
	s := New("widgets")
	f, _ := s.AddOrGetField("tags", value.KindArray)

	if err := f.AdoptArrayElementType(value.KindText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.AdoptArrayElementType(value.KindNumber); err == nil {
		t.Fatal("expected conflict for mismatched array element type")
	}
	if f.ArrayElementDataType() != value.KindText {
		t.Fatalf("expected element type to remain text, got %v", f.ArrayElementDataType())
	}
}

func TestObjectSchemaOrCreate_LazyAndStable(t *testing.T) {
	s := New("widgets")
	f, _ := s.AddOrGetField("author", value.KindObject)

	if f.ObjectSchema() != nil {
		t.Fatal("expected no object schema before first access")
	}
	child1 := f.ObjectSchemaOrCreate("author")
	child2 := f.ObjectSchemaOrCreate("author")
	if child1 != child2 {
		t.Fatal("expected ObjectSchemaOrCreate to be idempotent")
	}
}

func TestToValueFromValue_RoundTrip(t *testing.T) {
	s := New("widgets")
	_, _ = s.AddOrGetField("title", value.KindText)
	countField, _ := s.AddOrGetField("count", value.KindNumber)
	countField.MarkSortable()
	tagsField, _ := s.AddOrGetField("tags", value.KindArray)
	_ = tagsField.AdoptArrayElementType(value.KindText)
	authorField, _ := s.AddOrGetField("author", value.KindObject)
	child := authorField.ObjectSchemaOrCreate("author")
	_, _ = child.AddOrGetField("author.name", value.KindText)

	restored, err := FromValue(s.ToValue())
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}

	if !FieldsEqual(s, restored) {
		t.Fatal("expected round-tripped schema to be structurally equal")
	}
	if restored.ID() != s.ID() {
		t.Fatal("expected id to round-trip")
	}

	rf, ok := restored.Field("count")
	if !ok || !rf.IsSortable() {
		t.Fatal("expected sortable flag to round-trip")
	}
	rt, ok := restored.Field("tags")
	if !ok || rt.ArrayElementDataType() != value.KindText {
		t.Fatal("expected array element type to round-trip")
	}
	ra, ok := restored.Field("author")
	if !ok || ra.ObjectSchema() == nil {
		t.Fatal("expected nested object schema to round-trip")
	}
}

func TestFieldsEqual_DetectsGrowth(t *testing.T) {
	a := New("widgets")
	_, _ = a.AddOrGetField("title", value.KindText)

	b := New("widgets")
	_, _ = b.AddOrGetField("title", value.KindText)

	if !FieldsEqual(a, b) {
		t.Fatal("expected identical schemas to compare equal")
	}

	_, _ = b.AddOrGetField("count", value.KindNumber)
	if FieldsEqual(a, b) {
		t.Fatal("expected grown schema to compare unequal")
	}
}
