package misol

import "time"

// session tracks link liveness for one station connection.  Any received
// buffer, valid or not, proves the link is alive; prolonged silence expires
// the session and all derived state with it.
type session struct {
	timeout time.Duration

	firstDataReceived bool
	lastPacketTime    time.Time
}

// markAlive records traffic on the link and reports whether this was the
// first buffer of the session.
func (s *session) markAlive(now time.Time) (first bool) {
	first = !s.firstDataReceived
	s.firstDataReceived = true
	s.lastPacketTime = now
	return first
}

// expired reports whether the watchdog should fire: the session was active
// and no traffic has been seen within the timeout.  It is purely time-based
// and fires even on polls where no bytes arrived.
func (s *session) expired(now time.Time) bool {
	return s.firstDataReceived && now.Sub(s.lastPacketTime) > s.timeout
}

// reset deactivates the session.  The next buffer counts as a first packet
// again.
func (s *session) reset() {
	s.firstDataReceived = false
}
