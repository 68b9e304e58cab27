package scanner

import (
	"os"

	"golang.org/x/sys/cpu"
)

// Backend names the SIMD kernel a Scanner has been labelled with. Design
// Notes §9 ("Polymorphic backend selection") calls for a small dispatch
// table selected once at construction rather than virtual dispatch per
// chunk; this module keeps that scaffolding — the label is chosen once and
// cached — but every label currently executes the same portable kernel
// (see the Scanner type's doc comment in scanner.go for why).
type Backend int

const (
	BackendScalar Backend = iota
	BackendSSE42
	BackendAVX2
)

func (b Backend) String() string {
	switch b {
	case BackendAVX2:
		return "avx2"
	case BackendSSE42:
		return "sse4.2"
	default:
		return "scalar"
	}
}

// selectBackend picks a label once per Scanner using golang.org/x/sys/cpu
// feature detection, the teacher's one real third-party dependency
// (internal/scanner/cpu_amd64.go: hasAVX2/hasSSE42), honoring the
// TAPEJSON_BACKEND=scalar environment override from spec §6.
func selectBackend() Backend {
	if os.Getenv("TAPEJSON_BACKEND") == "scalar" {
		return BackendScalar
	}
	if cpu.X86.HasAVX2 {
		return BackendAVX2
	}
	if cpu.X86.HasSSE42 {
		return BackendSSE42
	}
	return BackendScalar
}
