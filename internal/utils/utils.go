package utils

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

func Must(e error) {
	if e != nil {
		log.Fatal(e)
	}
}

var offsetRx = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// TZToLocation accepts an IANA name ("Europe/Moscow") or a UTC offset
// ("+03:00", "UTC-5").
func TZToLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	if m := offsetRx.FindStringSubmatch(strings.ToUpper(tz)); m != nil {
		h, _ := strconv.Atoi(m[2])
		mins := 0
		if m[3] != "" {
			mins, _ = strconv.Atoi(m[3])
		}
		if h > 14 || mins > 59 {
			return nil, fmt.Errorf("offset out of range: %s", tz)
		}
		secs := h*3600 + mins*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone(tz, secs), nil
	}
	return time.LoadLocation(tz)
}

var hmRx = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ParseHM validates "HH:MM" and returns it zero-padded.
func ParseHM(s string) (string, error) {
	m := hmRx.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", h, m[2]), nil
}
