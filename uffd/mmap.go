package uffd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ReserveAnonymous reserves a private, anonymous virtual range of the given
// length with no fixed address, backing no pages. It is the frontend
// region before any fault has populated it.
func ReserveAnonymous(length uintptr) (uintptr, error) {
	addr, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		0,
		length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS,
		^uintptr(0), // fd = -1
		0,
	)
	if errno != 0 {
		return 0, fmt.Errorf("uffd: mmap(anonymous, %#x): %w", length, errno)
	}
	return addr, nil
}

// RemapAnonymousFixed replaces whatever mapping currently occupies the
// single page at addr with a fresh, unbacked anonymous mapping at the same
// address, so the address range stays contiguous while the page returns to
// the "will fault" state.
func RemapAnonymousFixed(addr uintptr, length uintptr) error {
	if err := munmap(addr, length); err != nil {
		return fmt.Errorf("uffd: munmap(%#x, %#x): %w", addr, length, err)
	}

	r1, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		addr,
		length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_FIXED,
		^uintptr(0),
		0,
	)
	if errno != 0 {
		return fmt.Errorf("uffd: mmap(fixed %#x, %#x): %w", addr, length, errno)
	}
	if r1 != addr {
		return fmt.Errorf("uffd: mmap(fixed %#x) placed mapping at %#x instead", addr, r1)
	}
	return nil
}

// Unmap releases the anonymous virtual range obtained from
// ReserveAnonymous. Used only on facade teardown/rollback.
func Unmap(addr uintptr, length uintptr) error {
	return munmap(addr, length)
}

func munmap(addr uintptr, length uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, length, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
