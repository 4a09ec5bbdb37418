package clock

import "time"

// Clock provides time to the application.
// The location of the returned time decides where "today" starts for date checks.
type Clock interface {
	Now() time.Time
}
