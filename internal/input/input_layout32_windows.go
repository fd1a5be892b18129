//go:build windows && (386 || arm)

package input

// INPUT with its union kept as a blob, 28 bytes in total.
type INPUT struct {
	Type uint32
	Data [24]byte
}
