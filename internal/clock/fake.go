package clock

import "time"

// FakeClock reports a fixed instant that tests move forward explicitly, so
// maturity windows and poll cutoffs can be crossed without sleeping.
type FakeClock struct {
	now time.Time
}

// NewFakeClock returns a FakeClock frozen at t, normalized to UTC.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the reported instant forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
