package ingest

import (
	"math"
	"time"
)

// excelEpoch is day 0 of the 1900 date system. Starting two days before
// 1900-01-01 absorbs the phantom 1900-02-29 for every serial after it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial bounds that keep the result inside years 1..9999.
const (
	minSerial = -693593 // 0001-01-01
	maxSerial = 2958465 // 9999-12-31
)

// NormalizeDate coerces a cell to a calendar date.
//
// A time.Time keeps only its date, a Date is returned unchanged and a number
// is read as a day offset from 1899-12-30. Everything else, including text
// and out-of-range serials, yields ok == false. It never fails.
func NormalizeDate(c Cell) (d Date, ok bool) {
	switch v := c.(type) {
	case nil:
		return Date{}, false
	case time.Time:
		return DateOf(v), true
	case Date:
		return v, true
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	case float64:
		return serialToDate(v)
	case float32:
		return serialToDate(float64(v))
	default:
		return Date{}, false
	}
}

// serialToDate truncates the serial toward zero before adding it to the epoch.
func serialToDate(serial float64) (Date, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return Date{}, false
	}
	days := math.Trunc(serial)
	if days < minSerial || days > maxSerial {
		return Date{}, false
	}
	return DateOf(excelEpoch.AddDate(0, 0, int(days))), true
}

// normalizeDatePtr is NormalizeDate shaped for optional record fields.
func normalizeDatePtr(c Cell) *Date {
	d, ok := NormalizeDate(c)
	if !ok {
		return nil
	}
	return &d
}
