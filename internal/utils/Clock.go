package utils

import "time"

// Clock supplies the current time to code that resolves dates against "now",
// such as clamping a future rate lookup to today. Services take a Clock so
// tests can pin the moment instead of depending on the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock reports a fixed instant, adjustable between assertions.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
