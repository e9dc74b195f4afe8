package uartfeed

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// ---- fakes ----

type fakeUART struct {
	mu  sync.Mutex
	buf []byte
}

var _ Port = (*fakeUART)(nil)

func (u *fakeUART) feed(p []byte) {
	u.mu.Lock()
	u.buf = append(u.buf, p...)
	u.mu.Unlock()
}

func (u *fakeUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.buf)
}

func (u *fakeUART) ReadByte() (byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b := u.buf[0]
	u.buf = u.buf[1:]
	return b, nil
}

func (u *fakeUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.buf)
	u.buf = u.buf[n:]
	return n, nil
}

func (u *fakeUART) Write(p []byte) (int, error) { return len(p), nil }

type fakeSubmitter struct {
	mu       sync.Mutex
	rejects  int // reject this many submits before accepting
	attempts int
	packets  [][]byte
}

func (s *fakeSubmitter) Submit(p []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.rejects > 0 {
		s.rejects--
		return false
	}
	s.packets = append(s.packets, append([]byte(nil), p...))
	return true
}

func (s *fakeSubmitter) snapshot() (int, [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, append([][]byte(nil), s.packets...)
}

func waitPackets(t *testing.T, s *fakeSubmitter, n int, d time.Duration) [][]byte {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if _, got := s.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	_, got := s.snapshot()
	t.Fatalf("got %d packets within %v, want %d", len(got), d, n)
	return nil
}

func startFeeder(t *testing.T, u *fakeUART, s *fakeSubmitter, cfg Config) {
	t.Helper()
	cfg.Port = u
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go New(s, cfg).Run(ctx)
}

// ---- tests ----

func TestFeeder_SubmitsLineFrames(t *testing.T) {
	u := &fakeUART{}
	s := &fakeSubmitter{}
	startFeeder(t, u, s, Config{})

	u.feed([]byte("hello\r\nworld\n"))
	got := waitPackets(t, s, 2, time.Second)
	if !bytes.Equal(got[0], []byte("hello")) || !bytes.Equal(got[1], []byte("world")) {
		t.Fatalf("packets %q, want [hello world]", got)
	}
}

func TestFeeder_DropsEmptyLinesAndClampsLongOnes(t *testing.T) {
	u := &fakeUART{}
	s := &fakeSubmitter{}
	startFeeder(t, u, s, Config{MaxFrame: 4})

	u.feed([]byte("\n\nabcdefgh\n"))
	got := waitPackets(t, s, 1, time.Second)
	if len(got) != 1 || !bytes.Equal(got[0], []byte("abcd")) {
		t.Fatalf("packets %q, want [abcd]", got)
	}
}

func TestFeeder_RetriesWhileSlotBusy(t *testing.T) {
	u := &fakeUART{}
	s := &fakeSubmitter{rejects: 3}
	startFeeder(t, u, s, Config{Retry: time.Millisecond})

	u.feed([]byte("retry me\n"))
	got := waitPackets(t, s, 1, time.Second)
	if !bytes.Equal(got[0], []byte("retry me")) {
		t.Fatalf("packet %q, want %q", got[0], "retry me")
	}
	attempts, _ := s.snapshot()
	if attempts != 4 {
		t.Fatalf("submit attempted %d times, want 4", attempts)
	}
}
