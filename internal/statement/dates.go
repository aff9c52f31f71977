package statement

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"moneyanalysis/internal/core"
)

// Day-first layouts. Month-first forms are never tried: Indian statements
// write 03/04/2024 for the 3rd of April.
var dateLayouts = []string{
	"02/01/2006", "2/1/2006", "02/01/06", "2/1/06",
	"02-01-2006", "2-1-2006", "02-01-06",
	"02.01.2006", "2.1.2006",
	"02-Jan-2006", "2-Jan-2006", "02-Jan-06",
	"02/Jan/2006", "02/Jan/06",
	"02 Jan 2006", "2 Jan 2006", "02 January 2006",
	"2006-01-02", "2006/01/02", "2006.01.02",
	time.RFC3339, "2006-01-02T15:04:05",
}

var timeSuffixes = []string{"", " 15:04:05", " 15:04", " 03:04:05 PM", " 03:04 PM", " 3:04:05 PM", " 3:04 PM"}

// Serial numbers outside this range are not treated as Excel dates.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// ParseDate reads a statement date cell. It returns false when the cell is
// blank or cannot be understood.
func ParseDate(s string) (core.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, false
	}
	for _, layout := range dateLayouts {
		for _, suffix := range timeSuffixes {
			if t, err := time.Parse(layout+suffix, s); err == nil {
				return dateOf(t), true
			}
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minExcelSerial && f <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return dateOf(t), true
		}
	}
	return core.Date{}, false
}

func dateOf(t time.Time) core.Date {
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}
