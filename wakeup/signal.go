// Package wakeup provides a cross-thread wake primitive that is pollable
// alongside an OS event-multiplex descriptor.
package wakeup

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Signal is a wake-once primitive backed by a Linux eventfd. Put is safe to
// call from any goroutine; the descriptor becomes readable after any Put
// and stays readable until Get drains it.
type Signal struct {
	fd int
}

// New creates a non-blocking, close-on-exec eventfd-backed signal.
func New() (*Signal, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("wakeup: eventfd: %w", err)
	}
	return &Signal{fd: fd}, nil
}

// Fd returns the descriptor, for use with an event-multiplex primitive.
func (s *Signal) Fd() int {
	return s.fd
}

// Put wakes anyone polling the descriptor. One or more calls before the
// next Get are coalesced into a single readable event, which is sufficient
// to break a waiter out of its wait.
func (s *Signal) Put() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(s.fd, buf[:])
	if err != nil {
		return fmt.Errorf("wakeup: write: %w", err)
	}
	return nil
}

// Get drains the pending count, returning the descriptor to not-readable.
func (s *Signal) Get() error {
	var buf [8]byte
	_, err := unix.Read(s.fd, buf[:])
	if err != nil {
		return fmt.Errorf("wakeup: read: %w", err)
	}
	return nil
}

// Close releases the descriptor.
func (s *Signal) Close() error {
	return unix.Close(s.fd)
}
