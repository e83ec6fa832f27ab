package nmea

import (
	"strconv"
	"strings"
)

// FixQuality holds the two GGA fields the display and the trackpoint
// serializer consume. Zero values mean "no fix" / "no reading".
type FixQuality struct {
	// Quality is the GGA fix quality code (0=invalid, 1=GPS, 2=DGPS, ...).
	Quality int
	// HDOP is the horizontal dilution of precision; 0 means unknown.
	HDOP float64
}

// GGA: Global Positioning System Fix Data
// Fields (comma/asterisk delimited, 1-indexed past the talker+type):
//
//	1: time (hhmmss.sss)
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
//
// lastGGAField is where the walk stops; fields beyond HDOP are irrelevant
// to this extractor.
const lastGGAField = 9

// ParseGGA extracts fix quality and HDOP from a GGA sentence. Only GPGGA
// and GNGGA talker variants are accepted; other sentences return ok=false
// and leave no trace. The result starts zeroed on every parse attempt, so a
// short or malformed sentence yields (0, 0.0) rather than stale values.
// Non-numeric field text degrades to zero; ParseGGA never fails.
func ParseGGA(line string) (q FixQuality, ok bool) {
	if !strings.HasPrefix(line, "$GPGGA") && !strings.HasPrefix(line, "$GNGGA") {
		return FixQuality{}, false
	}

	field := 0
	start := 0
	for i := 0; i <= len(line) && field <= lastGGAField; i++ {
		if i < len(line) && line[i] != ',' && line[i] != '*' {
			continue
		}
		switch field {
		case 6:
			if v, err := strconv.Atoi(strings.TrimSpace(line[start:i])); err == nil && v >= 0 {
				q.Quality = v
			}
		case 8:
			if v, err := strconv.ParseFloat(strings.TrimSpace(line[start:i]), 64); err == nil && v >= 0 {
				q.HDOP = v
			}
		}
		field++
		start = i + 1
	}
	return q, true
}
