// Package uffd binds the Linux userfaultfd(2) facility: opening the fault
// channel, negotiating the API, registering a virtual range for
// missing-page notifications, reading fault events and installing resolved
// pages. None of this is wrapped by golang.org/x/sys/unix, so the ioctl
// request codes and message layouts are reproduced here from
// linux/userfaultfd.h.
package uffd

// Userfaultfd feature/API negotiation, from linux/userfaultfd.h.
const (
	apiVersion = 0xAA

	// EventPagefault is the uffd_msg.Event value for a missing-page fault.
	EventPagefault = 0x12

	// RegisterModeMissing asks the kernel to notify on missing-page faults.
	RegisterModeMissing = uint64(1) << 0
)

// ioctl request codes for UFFDIO_API / UFFDIO_REGISTER / UFFDIO_COPY,
// computed the same way the kernel's _IOWR/_IOW macros do:
// (dir<<30)|(type<<8)|nr|(size<<16), with type == 0xAA ('UFFDIO').
const (
	ioctlAPI      = 0xc018aa3f // _IOWR(0xAA, 0x3F, struct uffdio_api)    (24 bytes)
	ioctlRegister = 0xc020aa00 // _IOWR(0xAA, 0x00, struct uffdio_register) (32 bytes)
	ioctlCopy     = 0xc028aa03 // _IOWR(0xAA, 0x03, struct uffdio_copy)     (40 bytes)
)

// api mirrors struct uffdio_api.
type api struct {
	API      uint64
	Features uint64
	Ioctls   uint64
}

// ioRange mirrors struct uffdio_range.
type ioRange struct {
	Start uint64
	Len   uint64
}

// register mirrors struct uffdio_register.
type register struct {
	Range  ioRange
	Mode   uint64
	Ioctls uint64
}

// copyCmd mirrors struct uffdio_copy.
type copyCmd struct {
	Dst  uint64
	Src  uint64
	Len  uint64
	Mode uint64
	Copy int64
}

// Msg mirrors struct uffd_msg for the UFFD_EVENT_PAGEFAULT case: an 8-byte
// header (event + reserved fields) followed by the pagefault union's
// leading flags/address pair, padded out to the kernel's 32-byte message
// size.
type Msg struct {
	Event    uint8
	_        uint8
	_        uint16
	_        uint32
	Flags    uint64
	Address  uint64
	_        [8]byte
}

// MsgSize is sizeof(struct uffd_msg) on Linux.
const MsgSize = 32
