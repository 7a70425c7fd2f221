package value

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFromAny_ScalarsAndComposites(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	cases := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"int", 7, Number(7)},
		{"float64", 1.5, Number(1.5)},
		{"string", "hi", Text("hi")},
		{"time", now, Timestamp(now)},
		{"uuid", id, Guid(id)},
		{"slice", []any{1, "two"}, Array([]Value{Number(1), Text("two")})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			if err != nil {
				t.Fatalf("FromAny: %v", err)
			}
			if !Equal(got, tc.want) {
				t.Fatalf("FromAny(%v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromAny_MapBecomesObject(t *testing.T) {
	got, err := FromAny(map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	obj, ok := got.AsObject()
	if !ok {
		t.Fatal("expected an Object value")
	}
	av, _ := obj.Get("a")
	if n, _ := av.AsNumber(); n != 1 {
		t.Fatalf("a = %v, want 1", n)
	}
	bv, _ := obj.Get("b")
	if s, _ := bv.AsText(); s != "x" {
		t.Fatalf("b = %q, want x", s)
	}
}

func TestFromAny_RejectsUnsupportedType(t *testing.T) {
	if _, err := FromAny(struct{ X int }{1}); err == nil {
		t.Fatal("expected an error converting an unsupported type")
	}
}

func TestToAny_IsInverseOfFromAny(t *testing.T) {
	obj := NewObject()
	obj.Set("title", Text("Widget"))
	obj.Set("count", Number(3))
	obj.Set("tags", Array([]Value{Text("a"), Text("b")}))

	got := ToAny(ObjectValue(obj))
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("ToAny returned %T, want map[string]any", got)
	}
	if m["title"] != "Widget" {
		t.Fatalf("title = %v, want Widget", m["title"])
	}
	if m["count"] != float64(3) {
		t.Fatalf("count = %v, want 3", m["count"])
	}
	tags, ok := m["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("tags = %v, want [a b]", m["tags"])
	}
}

func TestToDisplayString_FlattensCompositesOneValuePerLine(t *testing.T) {
	arr := Array([]Value{Text("alpha"), Null(), Text("beta")})
	got := ToDisplayString(arr)
	want := "alpha\nbeta"
	if got != want {
		t.Fatalf("ToDisplayString = %q, want %q", got, want)
	}
}

func TestToDisplayString_Scalars(t *testing.T) {
	if s := ToDisplayString(Bool(true)); s != "true" {
		t.Fatalf("bool: got %q", s)
	}
	if s := ToDisplayString(Number(2.5)); s != "2.5" {
		t.Fatalf("number: got %q", s)
	}
	if s := ToDisplayString(Null()); s != "" {
		t.Fatalf("null: got %q", s)
	}
}
