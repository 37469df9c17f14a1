package uffdcache

import (
	"unsafe"

	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func addressOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

var _ = Describe("AllocAligned", func() {
	It("returns a slice of exactly the requested length", func() {
		pageSize := unix.Getpagesize()
		buf := AllocAligned(pageSize * 3)
		Expect(buf).To(HaveLen(pageSize * 3))
	})

	It("returns a page-aligned slice", func() {
		pageSize := unix.Getpagesize()
		buf := AllocAligned(pageSize)
		addr := addressOf(buf)
		Expect(addr % uintptr(pageSize)).To(Equal(uintptr(0)))
	})

	It("panics when size is not a multiple of the page size", func() {
		pageSize := unix.Getpagesize()
		Expect(func() { AllocAligned(pageSize + 1) }).To(Panic())
	})

	It("panics when size is zero or negative", func() {
		Expect(func() { AllocAligned(0) }).To(Panic())
		Expect(func() { AllocAligned(-1) }).To(Panic())
	})
})

var _ = Describe("Builder preconditions", func() {
	pageSize := unix.Getpagesize()

	It("panics when cache_size is not positive", func() {
		backend := AllocAligned(pageSize * 2)
		Expect(func() { New(0, backend) }).To(Panic())
		Expect(func() { New(-pageSize, backend) }).To(Panic())
	})

	It("panics when cache_size is not a multiple of the page size", func() {
		backend := AllocAligned(pageSize * 2)
		Expect(func() { New(pageSize+1, backend) }).To(Panic())
	})

	It("panics when cache_size is not a power-of-two multiple of the page size", func() {
		backend := AllocAligned(pageSize * 6)
		Expect(func() { New(pageSize*3, backend) }).To(Panic())
	})

	It("panics when backend_size is smaller than cache_size", func() {
		backend := AllocAligned(pageSize)
		Expect(func() { New(pageSize*2, backend) }).To(Panic())
	})

	It("panics when backend_size is not a multiple of the page size", func() {
		backend := make([]byte, pageSize+1)
		Expect(func() { New(pageSize, backend) }).To(Panic())
	})

	It("panics when backend is empty", func() {
		Expect(func() { New(pageSize, nil) }).To(Panic())
	})

	It("panics when backend is not page-aligned", func() {
		raw := make([]byte, pageSize*2+1)
		off := 0
		if addressOf(raw)%uintptr(pageSize) == 0 {
			off = 1
		}
		Expect(func() { New(pageSize, raw[off:off+pageSize]) }).To(Panic())
	})

	It("does not panic on valid, page-aligned input", func() {
		backend := AllocAligned(pageSize * 4)
		Expect(func() { New(pageSize*2, backend) }).NotTo(Panic())
	})
})

var _ = Describe("Cache lifecycle", func() {
	It("constructs over valid input and, when the host kernel cooperates, exposes a working frontend", func() {
		pageSize := unix.Getpagesize()
		backend := AllocAligned(pageSize * 4)
		backend[0] = 7

		c := New(pageSize*2, backend)
		Expect(c).NotTo(BeNil())

		if !c.Ready() {
			Skip("userfaultfd unavailable in this environment (needs CAP_SYS_PTRACE or vm.unprivileged_userfaultfd=1)")
		}

		defer func() { Expect(c.Close()).To(Succeed()) }()

		Expect(c.Frontend()).To(HaveLen(len(backend)))
		Expect(c.Frontend()[0]).To(Equal(byte(7)))
	})

	It("Close on a never-ready cache is a safe no-op", func() {
		pageSize := unix.Getpagesize()
		backend := AllocAligned(pageSize)
		c := &Cache{pageSize: uint64(pageSize), cacheSize: uint64(pageSize), backend: backend, backendSize: uint64(pageSize)}
		Expect(c.Close()).To(Succeed())
		Expect(c.Ready()).To(BeFalse())
	})
})
