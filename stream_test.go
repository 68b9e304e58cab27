package tapejson

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestDocumentStream_BasicSequence(t *testing.T) {
	data := []byte(`{"a":1} [1,2,3] "hello" 42 true null`)
	s := NewDocumentStream(data, DefaultConfig())

	var types []Tag
	for {
		it, err := s.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if it == nil {
			break
		}
		b, err := it.Type()
		if err != nil {
			t.Fatalf("Type() error: %v", err)
		}
		types = append(types, Tag(b))
		if err := it.Skip(); err != nil {
			t.Fatalf("Skip() error: %v", err)
		}
	}

	want := []byte{'{', '[', '"', '4', 't', 'n'}
	if len(types) != len(want) {
		t.Fatalf("got %d documents, want %d", len(types), len(want))
	}
	for i, w := range want {
		if byte(types[i]) != w {
			t.Errorf("document %d first byte = %c, want %c", i, types[i], w)
		}
	}
}

func TestDocumentStream_EmptyInput(t *testing.T) {
	s := NewDocumentStream([]byte(``), DefaultConfig())
	it, err := s.Next()
	if err != nil || it != nil {
		t.Fatalf("Next() on empty input = %v, %v, want nil, nil", it, err)
	}
}

func TestDocumentStream_WhitespaceOnlyInput(t *testing.T) {
	s := NewDocumentStream([]byte("   \n\t  "), DefaultConfig())
	it, err := s.Next()
	if err != nil || it != nil {
		t.Fatalf("Next() on whitespace-only input = %v, %v, want nil, nil", it, err)
	}
}

func TestDocumentStream_TrailingWhitespaceAfterLastDocument(t *testing.T) {
	s := NewDocumentStream([]byte(`1 2 3   `), DefaultConfig())

	var got []int64
	for {
		it, err := s.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		if it == nil {
			break
		}
		n, err := it.Int64()
		if err != nil {
			t.Fatalf("Int64() error: %v", err)
		}
		got = append(got, n)
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDocumentStream_MalformedDocumentErrorIsSticky(t *testing.T) {
	s := NewDocumentStream([]byte(`1 {"a":1 2`), DefaultConfig())

	it, err := s.Next()
	if err != nil {
		t.Fatalf("first Next() error: %v", err)
	}
	n, err := it.Int64()
	if err != nil || n != 1 {
		t.Fatalf("first document = %d, %v, want 1, nil", n, err)
	}

	_, err = s.Next()
	if err == nil {
		t.Fatal("second Next() = nil error, want an error for the unterminated object")
	}
	firstErr := err

	_, err = s.Next()
	if err != firstErr {
		t.Errorf("third Next() error = %v, want the same sticky error %v", err, firstErr)
	}
}

// TestDocumentStream_SpansManyBatchBoundaries builds a long run of
// variable-width integer documents (so batch boundaries cannot line up
// evenly with token boundaries) and checks every value round-trips in
// order despite the stream resuming across several batches.
func TestDocumentStream_SpansManyBatchBoundaries(t *testing.T) {
	const count = 20000
	var b strings.Builder
	want := make([]int64, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		want[i] = int64(i)
		b.WriteString(strconv.Itoa(i))
	}
	data := []byte(b.String())
	if len(data) <= 64*1024 {
		t.Fatalf("test input too small to span multiple batches: %d bytes", len(data))
	}

	s := NewDocumentStream(data, Config{BatchSize: 64 * 1024})

	var got []int64
	for {
		it, err := s.Next()
		if err != nil {
			t.Fatalf("Next() error at document %d: %v", len(got), err)
		}
		if it == nil {
			break
		}
		n, err := it.Int64()
		if err != nil {
			t.Fatalf("Int64() error at document %d: %v", len(got), err)
		}
		got = append(got, n)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d documents, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("document %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDocumentStream_LongStringSpanningBatchBoundary(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	data := []byte(fmt.Sprintf(`1 %q 2`, long))

	s := NewDocumentStream(data, Config{BatchSize: 64 * 1024})

	it, err := s.Next()
	if err != nil {
		t.Fatalf("first Next() error: %v", err)
	}
	n, err := it.Int64()
	if err != nil || n != 1 {
		t.Fatalf("first document = %d, %v, want 1, nil", n, err)
	}

	it, err = s.Next()
	if err != nil {
		t.Fatalf("second Next() error: %v", err)
	}
	str, err := it.String()
	if err != nil {
		t.Fatalf("String() error: %v", err)
	}
	if str != long {
		t.Errorf("second document length = %d, want %d", len(str), len(long))
	}

	it, err = s.Next()
	if err != nil {
		t.Fatalf("third Next() error: %v", err)
	}
	n, err = it.Int64()
	if err != nil || n != 2 {
		t.Fatalf("third document = %d, %v, want 2, nil", n, err)
	}

	it, err = s.Next()
	if err != nil || it != nil {
		t.Fatalf("Next() past end = %v, %v, want nil, nil", it, err)
	}
}
