package fault

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/ashlandtech/uffdcache/uffd"
	"github.com/ashlandtech/uffdcache/wakeup"
)

var _ = Describe("Handler", func() {
	var (
		ctrl         *gomock.Controller
		shutdown     *wakeup.Signal
		pipeR, pipeW *os.File
		reader       *MockFaultReader
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())

		var err error
		shutdown, err = wakeup.New()
		Expect(err).NotTo(HaveOccurred())

		pipeR, pipeW, err = os.Pipe()
		Expect(err).NotTo(HaveOccurred())

		reader = NewMockFaultReader(ctrl)
		reader.EXPECT().Fd().Return(int(pipeR.Fd())).AnyTimes()
	})

	AfterEach(func() {
		ctrl.Finish()
		_ = shutdown.Close()
		_ = pipeR.Close()
		_ = pipeW.Close()
	})

	It("exits promptly when the shutdown signal is raised, without servicing any fault", func() {
		engine, _, _, _ := newTestEngine(ctrl, 4096, 8192)
		h := NewHandler(reader, shutdown, engine)
		h.Start()

		Expect(shutdown.Put()).To(Succeed())

		Eventually(h.Done(), time.Second).Should(BeClosed())
	})

	It("services exactly one fault per pagefault event read off the fault channel", func() {
		engine, _, frontend, backend := newTestEngine(ctrl, 4096, 8192)
		backend[0] = 9

		reader.EXPECT().ReadEvent().DoAndReturn(func() (uffd.Msg, error) {
			var b [1]byte
			_, _ = pipeR.Read(b[:])
			return uffd.Msg{Event: uffd.EventPagefault, Address: uint64(testFrontendBase)}, nil
		})

		h := NewHandler(reader, shutdown, engine)
		h.Start()

		_, err := pipeW.Write([]byte{0})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() byte { return frontend[0] }, time.Second).Should(Equal(byte(9)))

		Expect(shutdown.Put()).To(Succeed())
		Eventually(h.Done(), time.Second).Should(BeClosed())
	})

	It("discards non-pagefault events and keeps waiting", func() {
		engine, _, _, _ := newTestEngine(ctrl, 4096, 8192)

		reader.EXPECT().ReadEvent().DoAndReturn(func() (uffd.Msg, error) {
			var b [1]byte
			_, _ = pipeR.Read(b[:])
			return uffd.Msg{Event: 0xFF}, nil
		})

		h := NewHandler(reader, shutdown, engine)
		h.Start()

		_, err := pipeW.Write([]byte{0})
		Expect(err).NotTo(HaveOccurred())

		Consistently(h.Done(), 100*time.Millisecond).ShouldNot(BeClosed())

		Expect(shutdown.Put()).To(Succeed())
		Eventually(h.Done(), time.Second).Should(BeClosed())
	})
})
