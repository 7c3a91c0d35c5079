package clock

import "time"

// Real reads the wall clock in UTC.
var Real Clock = &realClock{}

// Clock abstracts the current time so command timestamps can be controlled in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (*realClock) Now() time.Time {
	return time.Now().UTC()
}
