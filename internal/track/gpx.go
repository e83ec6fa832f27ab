// Package track owns the recording side of the logger: the GPX session
// file, the point sampling clock, and trackpoint rendering.
package track

import (
	"fmt"
	"strconv"
	"strings"

	"tracklog-ng/internal/gps"
	"tracklog-ng/internal/nmea"
)

// GPX document framing. The preamble and footer are fixed byte sequences;
// points are appended between them one element per write so a truncated
// file (power loss before Stop) still contains only whole, parseable
// trackpoints.
const (
	gpxPreamble = "<?xml version='1.0' encoding='UTF-8'?>\n" +
		"<gpx version='1.1'>\n" +
		"<trk><trkseg>\n"
	gpxFooter = "</trkseg></trk></gpx>\n"
)

// Trackpoint renders one fix as a GPX <trkpt> element.
//
// Coordinates are fixed at 6 decimals. <time> is always present but left
// empty unless both date and time are valid for this snapshot; downstream
// consumers expect the tag either way. <ele>, <speed> and <course> appear
// only when the corresponding field is valid. <hdop> appears only when the
// dilution is known (> 0; zero is the extractor's "no reading" sentinel).
// All numbers use a fixed decimal point regardless of locale.
func Trackpoint(snap gps.Snapshot, q nmea.FixQuality) string {
	var b strings.Builder
	b.WriteString(`<trkpt lat="`)
	b.WriteString(strconv.FormatFloat(snap.LatDeg, 'f', 6, 64))
	b.WriteString(`" lon="`)
	b.WriteString(strconv.FormatFloat(snap.LonDeg, 'f', 6, 64))
	b.WriteString("\">\n")

	if snap.DateValid && snap.TimeValid {
		fmt.Fprintf(&b, "  <time>%04d-%02d-%02dT%02d:%02d:%02dZ</time>\n",
			snap.Year, snap.Month, snap.Day, snap.Hour, snap.Minute, snap.Second)
	} else {
		b.WriteString("  <time></time>\n")
	}
	if snap.AltValid {
		b.WriteString("  <ele>")
		b.WriteString(strconv.FormatFloat(snap.AltMeters, 'f', 2, 64))
		b.WriteString("</ele>\n")
	}
	if snap.SpeedValid {
		b.WriteString("  <speed>")
		b.WriteString(strconv.FormatFloat(snap.SpeedKmh, 'f', 2, 64))
		b.WriteString("</speed>\n")
	}
	if snap.CourseValid {
		b.WriteString("  <course>")
		b.WriteString(strconv.FormatFloat(snap.CourseDeg, 'f', 2, 64))
		b.WriteString("</course>\n")
	}
	if q.HDOP > 0 {
		b.WriteString("  <hdop>")
		b.WriteString(strconv.FormatFloat(q.HDOP, 'f', 1, 64))
		b.WriteString("</hdop>\n")
	}

	b.WriteString("</trkpt>\n")
	return b.String()
}
