package dostime

import (
	"time"
)

// Clock supplies the calendar fields of "now".
type Clock interface {
	Now() Fields
}

// SystemClock reads the host wall clock.
//
// The zero value reports UTC.
type SystemClock struct {
	// Location converts the wall clock before extracting fields. Nil means UTC.
	Location *time.Location
}

// Now returns the current calendar fields.
func (c SystemClock) Now() Fields {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	return FromTime(time.Now().In(loc))
}

// FixedClock always returns the same Fields, for deterministic builds.
type FixedClock Fields

// Now returns Fields(c).
func (c FixedClock) Now() Fields {
	return Fields(c)
}

// FixedTime returns a FixedClock pinned at the given time in its own location.
func FixedTime(t time.Time) FixedClock {
	return FixedClock(FromTime(t))
}

// Converter turns a Clock reading into DOS time and date.
type Converter struct {
	Clock Clock
}

// CurrentDOSTime reads the clock and returns the packed DOS time.
func (c Converter) CurrentDOSTime() (uint16, error) {
	f := c.now()
	if err := f.Validate(); err != nil {
		return 0, err
	}

	return PackTime(f), nil
}

// CurrentDOSDate reads the clock and returns the packed DOS date.
func (c Converter) CurrentDOSDate() (uint16, error) {
	f := c.now()
	if err := f.Validate(); err != nil {
		return 0, err
	}

	return PackDate(f), nil
}

// Current reads the clock once and returns both DOS time and date so that they cannot straddle a second boundary.
func (c Converter) Current() (dosTime, dosDate uint16, err error) {
	return Pack(c.now())
}

func (c Converter) now() Fields {
	if c.Clock == nil {
		return SystemClock{}.Now()
	}

	return c.Clock.Now()
}
