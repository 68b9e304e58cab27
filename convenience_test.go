package tapejson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type person struct {
	Name    string `json:"name"`
	Age     int    `json:"age,omitempty"`
	hidden  string
	Secret  string `json:"-"`
	Tags    []string
	Parent  *person `json:"parent,omitempty"`
	Blob    []byte  `json:"blob,omitempty"`
	Payload interface{}
}

func TestMarshal_StructTags(t *testing.T) {
	p := person{Name: "gopher", Age: 0, hidden: "x", Secret: "s", Tags: []string{"a", "b"}}
	out, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"name":"gopher"`) {
		t.Errorf("output missing renamed field: %s", s)
	}
	if strings.Contains(s, "age") {
		t.Errorf("omitempty field should have been dropped: %s", s)
	}
	if strings.Contains(s, "Secret") || strings.Contains(s, `"s"`) {
		t.Errorf("skipped field leaked into output: %s", s)
	}
	if strings.Contains(s, "hidden") {
		t.Errorf("unexported field leaked into output: %s", s)
	}
	if !strings.Contains(s, `"Tags":["a","b"]`) {
		t.Errorf("untagged field should keep its Go name: %s", s)
	}
}

func TestUnmarshal_StructTags(t *testing.T) {
	data := []byte(`{"name":"gopher","age":11,"Secret":"ignored","Tags":["a","b"],"blob":"aGVsbG8="}`)
	var p person
	if err := Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.Name != "gopher" {
		t.Errorf("Name = %q, want gopher", p.Name)
	}
	if p.Age != 11 {
		t.Errorf("Age = %d, want 11", p.Age)
	}
	if p.Secret != "" {
		t.Errorf("Secret = %q, want empty (json:\"-\" field must not be populated)", p.Secret)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "a" || p.Tags[1] != "b" {
		t.Errorf("Tags = %v, want [a b]", p.Tags)
	}
	if string(p.Blob) != "hello" {
		t.Errorf("Blob = %q, want hello", p.Blob)
	}
}

func TestUnmarshal_NestedPointerField(t *testing.T) {
	data := []byte(`{"name":"child","parent":{"name":"parent"}}`)
	var p person
	if err := Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.Parent == nil {
		t.Fatal("Parent = nil, want non-nil")
	}
	if p.Parent.Name != "parent" {
		t.Errorf("Parent.Name = %q, want parent", p.Parent.Name)
	}
}

func TestUnmarshal_NullPointerFieldStaysNil(t *testing.T) {
	data := []byte(`{"name":"child","parent":null}`)
	var p person
	if err := Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if p.Parent != nil {
		t.Errorf("Parent = %v, want nil", p.Parent)
	}
}

func TestUnmarshal_InterfaceFieldShapes(t *testing.T) {
	data := []byte(`{"name":"x","Payload":{"a":1,"b":[1,2,"three"],"c":null,"d":true}}`)
	var p person
	if err := Unmarshal(data, &p); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	m, ok := p.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("Payload = %T, want map[string]interface{}", p.Payload)
	}
	if a, _ := m["a"].(int64); a != 1 {
		t.Errorf("m[a] = %v, want int64 1", m["a"])
	}
	arr, ok := m["b"].([]interface{})
	if !ok || len(arr) != 3 {
		t.Fatalf("m[b] = %v, want a 3-element slice", m["b"])
	}
	if s, _ := arr[2].(string); s != "three" {
		t.Errorf("m[b][2] = %v, want three", arr[2])
	}
	if m["c"] != nil {
		t.Errorf("m[c] = %v, want nil", m["c"])
	}
	if b, _ := m["d"].(bool); !b {
		t.Errorf("m[d] = %v, want true", m["d"])
	}
}

func TestUnmarshal_MapDestination(t *testing.T) {
	data := []byte(`{"x":1,"y":2,"z":3}`)
	var m map[string]int
	if err := Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	want := map[string]int{"x": 1, "y": 2, "z": 3}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_SliceOfStructs(t *testing.T) {
	data := []byte(`[{"name":"a"},{"name":"b"}]`)
	var people []person
	if err := Unmarshal(data, &people); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(people) != 2 || people[0].Name != "a" || people[1].Name != "b" {
		t.Errorf("people = %+v, want [{a} {b}]", people)
	}
}

func TestMarshalUnmarshal_RoundTripSlice(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var got []int
	if err := Unmarshal(out, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("got %v, want %v", got, in)
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], in[i])
		}
	}
}

func TestMarshal_BytesAsBase64(t *testing.T) {
	out, err := Marshal([]byte("hello"))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(out) != `"aGVsbG8="` {
		t.Errorf("Marshal([]byte(\"hello\")) = %s, want \"aGVsbG8=\"", out)
	}
}

func TestMarshal_NilSliceIsNull(t *testing.T) {
	var s []int
	out, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("Marshal(nil slice) = %s, want null", out)
	}
}

func TestUnmarshal_RequiresNonNilPointer(t *testing.T) {
	if err := Unmarshal([]byte(`1`), nil); err == nil {
		t.Error("Unmarshal(nil) = nil error, want an error")
	}
	var p *person
	if err := Unmarshal([]byte(`{}`), p); err == nil {
		t.Error("Unmarshal(nil *person) = nil error, want an error")
	}
}

func TestDecoder_Decode(t *testing.T) {
	r := strings.NewReader(`{"name":"via-reader"}`)
	var p person
	if err := NewDecoder(r).Decode(&p); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if p.Name != "via-reader" {
		t.Errorf("Name = %q, want via-reader", p.Name)
	}
}

func TestEncoder_Encode(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if buf.String() != `{"a":1}` {
		t.Errorf("Encode() wrote %q, want {\"a\":1}", buf.String())
	}
}

func TestEncoder_EncodeMultipleValues(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(1); err != nil {
		t.Fatalf("first Encode() error: %v", err)
	}
	if err := enc.Encode(2); err != nil {
		t.Fatalf("second Encode() error: %v", err)
	}
	if buf.String() != "12" {
		t.Errorf("buffer = %q, want 12", buf.String())
	}
}
