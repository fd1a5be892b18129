//go:build windows && (amd64 || arm64)

package input

// INPUT with its union kept as a blob. MOUSEINPUT is the largest member and
// holds a pointer-sized field, so the union is 8 byte aligned.
type INPUT struct {
	Type uint32
	_    uint32
	Data [32]byte
}
