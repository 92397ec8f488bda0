// Package shm implements the byte-level protocol of a crash-survivable tail log.
//
// A Region is a fixed-capacity byte array, normally backed by memory shared
// between a writer process and a monitor process. The writer appends
// NUL-terminated text records with Region.Append; when a record does not fit
// in the remaining tail, the tail is zeroed and writing restarts at offset 0,
// leaving whatever older bytes lie past the new run as a stale fragment.
//
// The monitor has no cursor. After the writer is gone it calls ReadTail on the
// raw bytes and gets back the stale fragment (older) and the current run
// (newer), in chronological order:
//
//	r, _ := shm.NewRegion(make([]byte, 16))
//	r.Append([]byte("aaaaaaaaaa\n"))
//	r.Append([]byte("bbbb\n"))
//	shm.ReadTail(r.Bytes()).String() // "aaaa\nbbbb\n"
//
// Invariant: the last two bytes of a Region are always NUL, before and after
// every Append.
package shm
