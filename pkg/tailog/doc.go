// Package tailog keeps the last bytes of a program's diagnostic output
// readable after the program crashes.
//
// Start splits the program in two. The writer process continues running the
// program and logs into a fixed-size shared region with Logf; the monitor
// process waits for the writer to terminate, however that happens, and
// then prints what is left in the region to stdout and exits with the
// writer's exit code (or 126 after a diagnostic line if the writer was
// killed by a signal).
//
//	func main() {
//		tailog.MustStart(0) // 2 MiB region
//		tailog.Logf("starting %s\n", os.Args[0])
//		...
//	}
//
// The writer is a re-execution of the same binary, so Start must be called
// first thing in main. Linux only: the region is a memfd passed to the writer
// as file descriptor 3.
package tailog
