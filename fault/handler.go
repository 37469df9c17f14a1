package fault

import (
	"errors"
	"log"

	"golang.org/x/sys/unix"

	"github.com/ashlandtech/uffdcache/uffd"
)

// FaultReader is the subset of *uffd.Channel the handler waits on and reads
// from. Mocked in tests via go.uber.org/mock.
type FaultReader interface {
	Fd() int
	ReadEvent() (uffd.Msg, error)
}

// ShutdownWatcher is the subset of *wakeup.Signal the handler polls and
// drains at teardown. Mocked in tests via go.uber.org/mock.
type ShutdownWatcher interface {
	Fd() int
	Get() error
}

// Handler is the single dedicated worker goroutine described in §4.3: it
// waits on the fault channel and the shutdown signal via epoll, services
// each fault to completion, and exits cleanly on shutdown. It is the only
// code path permitted to call Engine.Service, which is what makes the tag
// table and frontend mappings lock-free (§9).
type Handler struct {
	reader   FaultReader
	shutdown ShutdownWatcher
	engine   *Engine

	done chan struct{}
}

// NewHandler builds a handler. Start must be called to spawn its goroutine.
func NewHandler(reader FaultReader, shutdown ShutdownWatcher, engine *Engine) *Handler {
	return &Handler{
		reader:   reader,
		shutdown: shutdown,
		engine:   engine,
		done:     make(chan struct{}),
	}
}

// Start spawns the handler goroutine and returns immediately.
func (h *Handler) Start() {
	go h.run()
}

// Done is closed once the handler goroutine has returned.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Stats returns the underlying engine's lifetime fault-handling counters.
func (h *Handler) Stats() Stats {
	return h.engine.Stats()
}

func (h *Handler) run() {
	defer close(h.done)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		log.Printf("fault: epoll_create1: %v", err)
		return
	}
	defer unix.Close(epfd)

	faultFd := h.reader.Fd()
	shutdownFd := h.shutdown.Fd()

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, faultFd,
		&unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(faultFd)}); err != nil {
		log.Printf("fault: epoll_ctl(fault): %v", err)
		return
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, shutdownFd,
		&unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(shutdownFd)}); err != nil {
		log.Printf("fault: epoll_ctl(shutdown): %v", err)
		return
	}

	events := make([]unix.EpollEvent, 2)

	for {
		if h.engine.Debug {
			log.Printf("fault: WAIT")
		}
		n, err := unix.EpollWait(epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			log.Printf("fault: epoll_wait: %v", err)
			return
		}

		shutdownRequested := false
		faultReady := false
		channelError := false

		for i := 0; i < n; i++ {
			switch int(events[i].Fd) {
			case shutdownFd:
				shutdownRequested = true
			case faultFd:
				if events[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
					channelError = true
				} else {
					faultReady = true
				}
			}
		}

		if shutdownRequested {
			_ = h.shutdown.Get()
			return
		}
		if channelError {
			log.Printf("fault: fault channel reported an error condition, exiting handler")
			return
		}
		if !faultReady {
			continue
		}

		msg, err := h.reader.ReadEvent()
		if err != nil {
			log.Printf("fault: read fault event: %v", err)
			continue
		}
		if msg.Event != uffd.EventPagefault {
			continue
		}
		if h.engine.Debug {
			log.Printf("fault: PAGEFAULT addr=%#x", msg.Address)
		}

		if err := h.engine.Service(uintptr(msg.Address)); err != nil {
			log.Printf("fault: service %#x: %v", msg.Address, err)
		}
	}
}
