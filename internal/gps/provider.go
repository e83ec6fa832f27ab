// Package gps maintains the current position state of the receiver.
//
// Semantic NMEA decoding (coordinates, date/time composition, checksum
// validation) is delegated to github.com/adrianmo/go-nmea; this package
// focuses on RMC+GGA, which carry everything a track logger needs
// (position, altitude, speed, course, UTC date/time, satellite count).
package gps

import (
	gonmea "github.com/adrianmo/go-nmea"
)

const knotsToKmh = 1.852

// Snapshot is one validity-tagged view of the receiver state. A field's
// value is meaningful only while its validity flag is set; consumers must
// never read a value whose flag is false.
type Snapshot struct {
	LatDeg   float64
	LonDeg   float64
	LocValid bool

	AltMeters float64
	AltValid  bool

	SpeedKmh   float64
	SpeedValid bool

	CourseDeg   float64
	CourseValid bool

	Year      int
	Month     int
	Day       int
	DateValid bool

	Hour      int
	Minute    int
	Second    int
	TimeValid bool

	Satellites int
	SatValid   bool
}

// Provider folds NMEA sentences into a Snapshot.
type Provider struct {
	snap Snapshot
}

// Update parses one complete sentence and folds it into the state.
// Returns true when the snapshot changed. Malformed sentences and bad
// checksums are absorbed silently; sentence types other than RMC/GGA are
// ignored.
func (p *Provider) Update(line string) bool {
	s, err := gonmea.Parse(line)
	if err != nil {
		return false
	}
	switch m := s.(type) {
	case gonmea.RMC:
		p.applyRMC(m)
	case gonmea.GGA:
		p.applyGGA(m)
	default:
		return false
	}
	return true
}

// Snapshot returns the current state by value.
func (p *Provider) Snapshot() Snapshot {
	return p.snap
}

func (p *Provider) applyRMC(m gonmea.RMC) {
	p.applyTime(m.Time)
	if m.Date.Valid {
		p.snap.Year = 2000 + m.Date.YY
		p.snap.Month = m.Date.MM
		p.snap.Day = m.Date.DD
		p.snap.DateValid = true
	} else {
		p.snap.DateValid = false
	}

	if m.Validity != gonmea.ValidRMC {
		// Void fix: position, speed and course are not usable this cycle.
		p.snap.LocValid = false
		p.snap.SpeedValid = false
		p.snap.CourseValid = false
		return
	}

	p.snap.LatDeg = m.Latitude
	p.snap.LonDeg = m.Longitude
	p.snap.LocValid = true
	p.snap.SpeedKmh = m.Speed * knotsToKmh
	p.snap.SpeedValid = true
	p.snap.CourseDeg = m.Course
	p.snap.CourseValid = true
}

func (p *Provider) applyGGA(m gonmea.GGA) {
	p.applyTime(m.Time)
	p.snap.Satellites = int(m.NumSatellites)
	p.snap.SatValid = true

	if m.FixQuality == gonmea.Invalid || m.FixQuality == "" {
		p.snap.LocValid = false
		p.snap.AltValid = false
		return
	}

	p.snap.LatDeg = m.Latitude
	p.snap.LonDeg = m.Longitude
	p.snap.LocValid = true
	p.snap.AltMeters = m.Altitude
	p.snap.AltValid = true
}

func (p *Provider) applyTime(t gonmea.Time) {
	if !t.Valid {
		p.snap.TimeValid = false
		return
	}
	p.snap.Hour = t.Hour
	p.snap.Minute = t.Minute
	p.snap.Second = t.Second
	p.snap.TimeValid = true
}
