// Package monitor exposes a running cache's health, fault-handling
// counters, and internal state over HTTP, for external introspection while
// the process is alive.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable net/http/pprof's registered handlers on the default mux, which
	// this package mounts under /debug/pprof/.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/ashlandtech/uffdcache/fault"
)

// CacheView is the subset of *uffdcache.Cache the monitor reports on.
type CacheView interface {
	Ready() bool
	Stats() fault.Stats
	Frontend() []byte
}

// Monitor serves introspection endpoints for a Cache over HTTP.
type Monitor struct {
	cache      CacheView
	portNumber int
	startedAt  time.Time
}

// New creates a Monitor over the given cache. WithPortNumber may be chained
// before Start to pin a listening port; otherwise the OS picks one.
func New(cache CacheView) *Monitor {
	return &Monitor{cache: cache}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000 are
// rejected in favor of an OS-assigned port, matching this package's
// grounding in not trusting a caller-supplied privileged port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"monitor: port %d is not allowed for the monitoring server, "+
				"using an OS-assigned port instead\n", portNumber)
		portNumber = 0
	}
	m.portNumber = portNumber
	return m
}

// Start begins serving in a background goroutine and returns the address it
// bound to.
func (m *Monitor) Start() (net.Addr, error) {
	m.startedAt = time.Now()

	r := mux.NewRouter()
	r.HandleFunc("/healthz", m.healthz)
	r.HandleFunc("/stats", m.stats)
	r.HandleFunc("/debug/state", m.debugState)
	r.HandleFunc("/debug/profile", m.collectProfile)
	r.HandleFunc("/debug/resource", m.resource)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return nil, fmt.Errorf("monitor: listen: %w", err)
	}

	log.Printf("monitor: serving on http://%s", listener.Addr())

	go func() {
		if err := http.Serve(listener, r); err != nil {
			log.Printf("monitor: server exited: %v", err)
		}
	}()

	return listener.Addr(), nil
}

type healthzRsp struct {
	Ready   bool   `json:"ready"`
	Uptime  string `json:"uptime"`
	Running bool   `json:"running"`
}

func (m *Monitor) healthz(w http.ResponseWriter, _ *http.Request) {
	rsp := healthzRsp{
		Ready:   m.cache.Ready(),
		Uptime:  time.Since(m.startedAt).String(),
		Running: true,
	}
	writeJSON(w, rsp)
}

type statsRsp struct {
	Faults      uint64 `json:"faults"`
	Evictions   uint64 `json:"evictions"`
	FrontendLen int    `json:"frontend_len"`
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	s := m.cache.Stats()
	rsp := statsRsp{
		Faults:      s.Faults,
		Evictions:   s.Evictions,
		FrontendLen: len(m.cache.Frontend()),
	}
	writeJSON(w, rsp)
}

// debugState dumps the cache's exported state one level deep using goseth,
// the same struct-to-JSON walker the distilled teacher's monitor used for
// its component inspector endpoint.
func (m *Monitor) debugState(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.cache)
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(w); err != nil {
		log.Printf("monitor: serialize state: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// collectProfile captures one second of CPU profile and returns it decoded
// as JSON via google/pprof's profile.Profile, rather than the raw pprof
// wire format, so a caller does not need the pprof tool to read it.
func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		log.Printf("monitor: start cpu profile: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		log.Printf("monitor: parse profile: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

// resource reports this process's CPU and resident memory usage, via
// gopsutil. Watching memory_size alongside /stats's eviction count is how an
// operator confirms the cache is holding its configured footprint rather
// than the full backend.
func (m *Monitor) resource(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("monitor: process handle: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		log.Printf("monitor: cpu percent: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		log.Printf("monitor: memory info: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		log.Printf("monitor: encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}
