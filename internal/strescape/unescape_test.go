package strescape

import (
	"testing"
)

type byteSink struct {
	buf []byte
}

func (s *byteSink) Write(b []byte) (int, error) {
	s.buf = append(s.buf, b...)
	return len(b), nil
}

func (s *byteSink) WriteByte(b byte) error {
	s.buf = append(s.buf, b)
	return nil
}

func TestUnescape_Basic(t *testing.T) {
	tests := []struct {
		name    string
		src     string // does not include the opening quote
		want    string
		wantErr bool
	}{
		{"empty string", `"`, "", false},
		{"plain ascii", `hello"`, "hello", false},
		{"escaped quote", `a\"b"`, `a"b`, false},
		{"escaped backslash", `a\\b"`, `a\b`, false},
		{"escaped slash", `a\/b"`, "a/b", false},
		{"escaped controls", `\b\f\n\r\t"`, "\b\f\n\r\t", false},
		{"utf8 passthrough", `é"`, "é", false},
		{"unicode escape", `\u00e9"`, "é", false},
		{"surrogate pair escape", `\ud83d\ude00"`, "😀", false},
		{"lone high surrogate", `\ud83d"`, "", true},
		{"lone low surrogate", `\udc00"`, "", true},
		{"truncated escape", `\u00"`, "", true},
		{"invalid hex", `\u00zz"`, "", true},
		{"unterminated string", `abc`, "", true},
		{"raw control character", "a\x01b\"", "", true},
		{"unknown escape", `\q"`, "", true},
		{"dangling backslash", `\`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink byteSink
			_, err := Unescape([]byte(tt.src), &sink)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unescape(%q) = nil error, want error", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unescape(%q) error: %v", tt.src, err)
			}
			if string(sink.buf) != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.src, sink.buf, tt.want)
			}
		})
	}
}

func TestUnescape_ConsumedCount(t *testing.T) {
	src := `hello"trailing`
	var sink byteSink
	consumed, err := Unescape([]byte(src), &sink)
	if err != nil {
		t.Fatalf("Unescape error: %v", err)
	}
	if consumed != len(`hello"`) {
		t.Errorf("consumed = %d, want %d", consumed, len(`hello"`))
	}
	if string(sink.buf) != "hello" {
		t.Errorf("buf = %q, want %q", sink.buf, "hello")
	}
}
