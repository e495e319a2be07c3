// Package xldate converts OLE-automation dates (a float64 count of days
// since a fixed epoch) into civil calendar fields, honouring both the 1900
// epoch (with Excel's legacy 1900-leap-year bug) and the 1904 epoch.
package xldate

import (
	"math"
	"time"
)

// Epoch selects which serial-date origin a workbook uses
// (workbookPr/@date1904).
type Epoch int

const (
	Epoch1900 Epoch = iota
	Epoch1904
)

// Civil is a calendar/clock tuple, decoupled from time.Time so that the
// legacy 1900 leap-bug day can be represented (Feb 29 1900 does not exist
// on any real calendar, but Excel reports it).
type Civil struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// ExcelDate is the immutable result of converting a serial OLE date. Civil
// is the value a caller should display; AdjustDaysPost records the day-of-
// month compensation baked into Civil.Day. ToOLE does not use it: the
// originating serial number is retained for the round trip instead.
type ExcelDate struct {
	Civil          Civil
	AdjustDaysPost int // -1, 0, or +1

	epoch  Epoch
	serial float64 // retained verbatim so ToOLE is exact by construction
}

var (
	excel1900Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	excel1904Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	boundaryDec30 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	boundaryDec31 = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	boundaryFeb28 = time.Date(1900, time.February, 28, 0, 0, 0, 0, time.UTC)
	boundaryMar01 = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)
)

const daysTo1904Epoch = 1462.0 // days between 1899-12-30 and 1904-01-01

// FromOLE converts an OLE-automation date d (days since the epoch selected
// by epoch, fractional part is time-of-day) into an ExcelDate.
func FromOLE(d float64, epoch Epoch) ExcelDate {
	if epoch == Epoch1904 {
		return civilFromDaysSince1899(d+daysTo1904Epoch, epoch, d, 0)
	}

	whole := math.Floor(d)
	frac := d - whole
	t := excel1900Epoch.AddDate(0, 0, int(whole)) // "internal date" before compensation

	var addDays, post int
	switch {
	case t.Before(boundaryDec30):
		addDays, post = 2, 0
	case t.Before(boundaryDec31):
		addDays, post = 2, -1
	case t.Before(boundaryFeb28):
		addDays, post = 1, 0
	case t.Before(boundaryMar01):
		addDays, post = 0, 1
	default:
		addDays, post = 0, 0
	}

	real := t.AddDate(0, 0, addDays)
	h, m, s, ms := timeOfDay(frac)
	civil := Civil{
		Year:        real.Year(),
		Month:       int(real.Month()),
		Day:         real.Day() + post,
		Hour:        h,
		Minute:      m,
		Second:      s,
		Millisecond: ms,
	}
	return ExcelDate{Civil: civil, AdjustDaysPost: post, epoch: epoch, serial: d}
}

func civilFromDaysSince1899(days float64, epoch Epoch, serial float64, post int) ExcelDate {
	whole := math.Floor(days)
	frac := days - whole
	real := excel1904Epoch.AddDate(0, 0, int(whole))
	h, m, s, ms := timeOfDay(frac)
	civil := Civil{
		Year:        real.Year(),
		Month:       int(real.Month()),
		Day:         real.Day() + post,
		Hour:        h,
		Minute:      m,
		Second:      s,
		Millisecond: ms,
	}
	return ExcelDate{Civil: civil, AdjustDaysPost: post, epoch: epoch, serial: serial}
}

// timeOfDay derives hour/minute/second/millisecond from the fractional-day
// part of a serial date, rounding to the nearest millisecond half-away-from
// -zero, matching Excel's own quantisation.
func timeOfDay(fracDays float64) (hour, minute, second, millis int) {
	totalMs := int64(math.Round(fracDays * 86400000))
	if totalMs < 0 {
		totalMs += 86400000
	}
	if totalMs >= 86400000 {
		totalMs -= 86400000
	}
	millis = int(totalMs % 1000)
	totalMs /= 1000
	second = int(totalMs % 60)
	totalMs /= 60
	minute = int(totalMs % 60)
	totalMs /= 60
	hour = int(totalMs % 24)
	return
}

// ToOLE returns the serial OLE date that produced ed. It is exact
// (including through the 1900 leap-bug compensation) because ExcelDate
// retains the originating serial number internally rather than trying to
// invert the display-oriented compensation table, which is lossy at the
// serial-date-0 boundary.
func (ed ExcelDate) ToOLE() float64 {
	return ed.serial
}

// Epoch reports which epoch ed was computed under.
func (ed ExcelDate) Epoch() Epoch {
	return ed.epoch
}
