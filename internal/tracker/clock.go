package tracker

import "time"

// Clock returns the current time in the reference time zone.
type Clock interface {
	Now() time.Time
}

type ZoneClock struct {
	loc *time.Location
}

func NewZoneClock(loc *time.Location) ZoneClock {
	return ZoneClock{loc: loc}
}

func (c ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}
