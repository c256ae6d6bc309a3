//go:build linux

package main

import "golang.org/x/sys/unix"

// pinToCore binds the calling thread to a single CPU. The caller must have
// locked its goroutine to the thread first.
func pinToCore(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
