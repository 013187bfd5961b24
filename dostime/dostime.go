// Package dostime converts calendar time into the packed MS-DOS date and time fields used by ZIP headers.
//
// See https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime.
//
// Time bits 0-4: second/2; 5-10: minute; 11-15: hour.
// Date bits 0-4: day of month; 5-8: month; 9-15: years since 1980.
package dostime

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinYear is the DOS epoch.
	MinYear = 1980
	// MaxYear is the last year that fits in the 7-bit year field.
	MaxYear = MinYear + 0x7f
)

// ErrFieldOutOfRange is returned if a calendar field does not fit in its bit range.
var ErrFieldOutOfRange = errors.New("calendar field out of range")

// Fields holds the six calendar values that make up a DOS timestamp.
type Fields struct {
	Hour, Minute, Second int
	Day, Month, Year     int
}

// FromTime extracts Fields from the given time.Time in its own location.
func FromTime(t time.Time) Fields {
	return Fields{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Day:    t.Day(),
		Month:  int(t.Month()),
		Year:   t.Year(),
	}
}

// Validate returns a wrapped ErrFieldOutOfRange naming the first field outside its valid range.
func (f Fields) Validate() error {
	switch {
	case f.Hour < 0 || f.Hour > 23:
		return fmt.Errorf("hour %d: %w", f.Hour, ErrFieldOutOfRange)
	case f.Minute < 0 || f.Minute > 59:
		return fmt.Errorf("minute %d: %w", f.Minute, ErrFieldOutOfRange)
	case f.Second < 0 || f.Second > 59:
		return fmt.Errorf("second %d: %w", f.Second, ErrFieldOutOfRange)
	case f.Day < 1 || f.Day > 31:
		return fmt.Errorf("day %d: %w", f.Day, ErrFieldOutOfRange)
	case f.Month < 1 || f.Month > 12:
		return fmt.Errorf("month %d: %w", f.Month, ErrFieldOutOfRange)
	case f.Year < MinYear || f.Year > MaxYear:
		return fmt.Errorf("year %d: %w", f.Year, ErrFieldOutOfRange)
	default:
		return nil
	}
}

// PackTime packs hour, minute and second into a DOS time. Seconds are stored with 2-second resolution.
//
// No validation is done; out-of-range values overlap neighbouring fields. Use Fields.Validate first.
func PackTime(f Fields) uint16 {
	var v uint16
	v += uint16(f.Second / 2)
	v += uint16(f.Minute) << 5
	v += uint16(f.Hour) << 11
	return v
}

// PackDate packs day, month and year into a DOS date.
//
// No validation is done; a year before 1980 underflows. Use Fields.Validate first.
func PackDate(f Fields) uint16 {
	var v uint16
	v += uint16(f.Day)
	v += uint16(f.Month) << 5
	v += uint16(f.Year-MinYear) << 9
	return v
}

// Pack validates f then returns both the DOS time and date.
func Pack(f Fields) (dosTime, dosDate uint16, err error) {
	if err = f.Validate(); err != nil {
		return 0, 0, err
	}

	return PackTime(f), PackDate(f), nil
}

// UnpackTime returns the Hour, Minute, and Second fields of a DOS time.
func UnpackTime(v uint16) Fields {
	return Fields{
		Hour:   int(v >> 11),
		Minute: int(v >> 5 & 0x3f),
		Second: int(v&0x1f) * 2,
	}
}

// UnpackDate returns the Day, Month, and Year fields of a DOS date.
func UnpackDate(v uint16) Fields {
	return Fields{
		Day:   int(v & 0x1f),
		Month: int(v >> 5 & 0xf),
		Year:  int(v>>9) + MinYear,
	}
}

// ToTime converts a DOS date and time into a time.Time in UTC.
func ToTime(dosDate, dosTime uint16) time.Time {
	d, t := UnpackDate(dosDate), UnpackTime(dosTime)
	return time.Date(d.Year, time.Month(d.Month), d.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}
