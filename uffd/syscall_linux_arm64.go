//go:build linux && arm64

package uffd

// sysUserfaultfd is __NR_userfaultfd on arm64. Not exported by
// golang.org/x/sys/unix, so it is pinned here per architecture.
const sysUserfaultfd = 282
