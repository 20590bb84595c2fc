package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	ticks  chan time.Time
	timers chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		ticks:  make(chan time.Time),
		timers: make(chan time.Time),
	}
}

func (c *fakeClock) NewTicker(time.Duration) Ticker { return fakeTicker{c.ticks} }
func (c *fakeClock) NewTimer(time.Duration) Timer   { return fakeTimer{c.timers} }

type fakeTicker struct{ c chan time.Time }

func (t fakeTicker) C() <-chan time.Time { return t.c }
func (t fakeTicker) Stop()               {}

type fakeTimer struct{ c chan time.Time }

func (t fakeTimer) C() <-chan time.Time { return t.c }
func (t fakeTimer) Stop() bool          { return true }

type stubSession struct {
	mu         sync.Mutex
	refreshErr error
	refreshes  int
	logouts    int
}

func (s *stubSession) RefreshToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return s.refreshErr
}

func (s *stubSession) Logout(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
}

func (s *stubSession) setRefreshErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshErr = err
}

func (s *stubSession) counts() (refreshes, logouts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes, s.logouts
}

type MonitorSuite struct {
	suite.Suite
	clock   *fakeClock
	session *stubSession
	notes   chan Notification
	monitor *Monitor
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.clock = newFakeClock()
	s.session = &stubSession{}
	s.notes = make(chan Notification, 16)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.monitor = New(s.session,
		NotifierFunc(func(n Notification) { s.notes <- n }),
		WithClock(s.clock),
		WithLogger(logger),
	)
}

func (s *MonitorSuite) TearDownTest() {
	s.monitor.Stop()
}

func (s *MonitorSuite) tick() {
	select {
	case s.clock.ticks <- time.Now():
	case <-time.After(time.Second):
		s.FailNow("monitor did not consume the tick")
	}
}

func (s *MonitorSuite) fireRetry() {
	select {
	case s.clock.timers <- time.Now():
	case <-time.After(time.Second):
		s.FailNow("monitor did not consume the retry timer")
	}
}

func (s *MonitorSuite) expectNote(kind Kind) Notification {
	select {
	case n := <-s.notes:
		s.Equal(kind, n.Kind)
		return n
	case <-time.After(time.Second):
		s.FailNow("expected a notification", "kind %s", kind)
		return Notification{}
	}
}

func (s *MonitorSuite) expectNoNote() {
	select {
	case n := <-s.notes:
		s.Failf("unexpected notification", "%+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *MonitorSuite) eventuallyState(want State) {
	s.Require().Eventually(func() bool {
		return s.monitor.State() == want
	}, time.Second, 5*time.Millisecond)
}

func (s *MonitorSuite) TestQuietTicksKeepSessionAlive() {
	s.monitor.Arm(context.Background())
	s.Equal(StateArmed, s.monitor.State())

	s.tick()
	s.tick()

	s.expectNoNote()
	refreshes, logouts := s.session.counts()
	s.Equal(2, refreshes)
	s.Equal(0, logouts)
	s.Equal(StateArmed, s.monitor.State())
}

func (s *MonitorSuite) TestEscalationExactlyOneWarningOneLogout() {
	s.monitor.Arm(context.Background())
	s.session.setRefreshErr(errors.New("token rejected"))

	// First failing tick: one warning, retry armed.
	s.tick()
	s.expectNote(KindExpiring)
	s.eventuallyState(StateEscalating)

	// Second failing tick while the retry is pending: no second warning.
	s.tick()
	s.expectNoNote()

	// The one-shot retry fails: expired notification, forced logout.
	s.fireRetry()
	s.expectNote(KindExpired)
	s.eventuallyState(StateIdle)

	_, logouts := s.session.counts()
	s.Equal(1, logouts)
	s.Empty(s.notes, "exactly one warning and one expiry in total")
}

func (s *MonitorSuite) TestRetrySuccessKeepsSessionButSpendsWarning() {
	s.monitor.Arm(context.Background())
	s.session.setRefreshErr(errors.New("token rejected"))

	s.tick()
	s.expectNote(KindExpiring)
	s.eventuallyState(StateEscalating)

	// The retry succeeds, the session continues.
	s.session.setRefreshErr(nil)
	s.fireRetry()
	s.eventuallyState(StateArmed)
	_, logouts := s.session.counts()
	s.Equal(0, logouts)

	// A later failure escalates again, but the warning budget is spent.
	s.session.setRefreshErr(errors.New("token rejected"))
	s.tick()
	s.expectNoNote()
	s.eventuallyState(StateEscalating)

	s.fireRetry()
	s.expectNote(KindExpired)
	s.eventuallyState(StateIdle)

	_, logouts = s.session.counts()
	s.Equal(1, logouts)
}

func (s *MonitorSuite) TestDisarmCancelsEscalation() {
	s.monitor.Arm(context.Background())
	s.session.setRefreshErr(errors.New("token rejected"))

	s.tick()
	s.expectNote(KindExpiring)
	s.eventuallyState(StateEscalating)

	s.monitor.Disarm()
	s.Equal(StateIdle, s.monitor.State())

	// The pending retry must never fire a logout for an ended session.
	s.expectNoNote()
	_, logouts := s.session.counts()
	s.Equal(0, logouts)
}

func (s *MonitorSuite) TestRearmRestoresWarningBudget() {
	s.monitor.Arm(context.Background())
	s.session.setRefreshErr(errors.New("token rejected"))
	s.tick()
	s.expectNote(KindExpiring)

	s.monitor.Disarm()
	s.eventuallyState(StateIdle)

	// A fresh session gets its own single warning.
	s.monitor.Arm(context.Background())
	s.tick()
	s.expectNote(KindExpiring)
}

func (s *MonitorSuite) TestOnVisibleSwallowsFailures() {
	s.monitor.Arm(context.Background())
	s.session.setRefreshErr(errors.New("token rejected"))

	s.monitor.OnVisible(context.Background())

	s.expectNoNote()
	refreshes, logouts := s.session.counts()
	s.Equal(1, refreshes)
	s.Equal(0, logouts)
}

func (s *MonitorSuite) TestOnVisibleIdleDoesNothing() {
	s.monitor.OnVisible(context.Background())

	refreshes, _ := s.session.counts()
	s.Equal(0, refreshes)
}

func (s *MonitorSuite) TestArmTwiceIsNoOp() {
	s.monitor.Arm(context.Background())
	s.monitor.Arm(context.Background())

	s.tick()
	s.expectNoNote()
	refreshes, _ := s.session.counts()
	s.Equal(1, refreshes, "a single watchdog consumes each tick once")
}
