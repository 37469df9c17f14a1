package uffd

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Channel is an open, API-negotiated userfaultfd(2) descriptor registered
// over some virtual range in "report missing pages" mode.
type Channel struct {
	fd int
}

// Open creates a non-blocking, close-on-exec userfaultfd descriptor and
// negotiates the UFFD_API version the kernel speaks. Callers must Register
// a range before any fault will be reported on it.
func Open() (*Channel, error) {
	r1, _, errno := unix.Syscall(sysUserfaultfd, uintptr(unix.O_CLOEXEC|unix.O_NONBLOCK), 0, 0)
	if errno != 0 {
		return nil, fmt.Errorf("uffd: userfaultfd(2): %w", errno)
	}
	fd := int(r1)

	req := api{API: apiVersion}
	if err := ioctl(fd, ioctlAPI, unsafe.Pointer(&req)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uffd: UFFDIO_API: %w", err)
	}

	return &Channel{fd: fd}, nil
}

// Fd returns the raw descriptor, for use with an event-multiplex primitive
// (epoll) alongside a shutdown signal.
func (c *Channel) Fd() int {
	return c.fd
}

// Register asks the kernel to report missing-page faults for the page-
// aligned range [addr, addr+length) on this channel.
func (c *Channel) Register(addr uintptr, length uintptr) error {
	req := register{
		Range: ioRange{Start: uint64(addr), Len: uint64(length)},
		Mode:  RegisterModeMissing,
	}
	if err := ioctl(c.fd, ioctlRegister, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("uffd: UFFDIO_REGISTER(%#x, %#x): %w", addr, length, err)
	}
	return nil
}

// ReadEvent reads exactly one uffd_msg and returns it. The descriptor was
// opened non-blocking, so when no message is queued ReadEvent returns an
// error (EAGAIN) instead of waiting; it is meant to be called after an epoll
// wait reports the descriptor readable. Callers should discard any event
// whose Event field is not EventPagefault.
func (c *Channel) ReadEvent() (Msg, error) {
	var buf [MsgSize]byte
	n, err := unix.Read(c.fd, buf[:])
	if err != nil {
		return Msg{}, fmt.Errorf("uffd: read: %w", err)
	}
	if n != MsgSize {
		return Msg{}, fmt.Errorf("uffd: short read of %d bytes, want %d", n, MsgSize)
	}
	return *(*Msg)(unsafe.Pointer(&buf[0])), nil
}

// Copy delivers length bytes starting at src into the faulting page at dst,
// atomically populating the frontend mapping and waking the blocked access.
func (c *Channel) Copy(dst, src uintptr, length uintptr) error {
	req := copyCmd{Dst: uint64(dst), Src: uint64(src), Len: uint64(length)}
	if err := ioctl(c.fd, ioctlCopy, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("uffd: UFFDIO_COPY(%#x<-%#x, %#x): %w", dst, src, length, err)
	}
	return nil
}

// Close closes the fault channel. Any threads blocked in a poll/epoll wait
// on it observe an error condition.
func (c *Channel) Close() error {
	return unix.Close(c.fd)
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
