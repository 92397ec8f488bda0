// Package shm contains platform-specific helpers for mapping the shared log region.
package shm

import "errors"

// ErrUnsupported is returned on platforms without anonymous shared memory files.
var ErrUnsupported = errors.New("shared memory region not supported on this platform")

// MappedRegion represents a memory-mapped shared region.
type MappedRegion struct {
	Addr []byte
	// Fd is the descriptor backing Addr. It stays open for the life of the
	// process so it can be handed to a child.
	Fd   int
	Name string
}

// Size returns the mapped length in bytes.
func (r *MappedRegion) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Addr)
}

// MapOptions defines options for mapping shared memory.
type MapOptions struct {
	Name string
	Size int
	// Create allocates a new zero-filled region of Size bytes. Otherwise Fd
	// is mapped at its current size and Size is ignored.
	Create bool
	Fd     int
}

// Function implementations are provided in platform-specific files (platform_linux.go, platform_other.go).
