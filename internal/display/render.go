// Package display renders the live status readout on a 128x64 ssd1306
// OLED.
package display

import (
	"fmt"
	"image"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"tracklog-ng/internal/tracker"
)

const (
	screenW = 128
	screenH = 64
)

// render draws one status page into a fresh 1-bit frame.
//
// Layout (Face7x13, 13px baseline steps):
//
//	Fix:1 Sats: 8  H:0.9
//	 48.11730
//	 11.51667
//	REC track_....gpx
func render(st tracker.Status) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, screenW, screenH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	line := func(y int, s string) {
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(s)
	}

	sats := "--"
	if st.Position.SatValid {
		sats = fmt.Sprintf("%2d", st.Position.Satellites)
	}
	if st.Quality.HDOP > 0 {
		line(13, fmt.Sprintf("Fix:%d Sats:%s H:%.1f", st.Quality.Quality, sats, st.Quality.HDOP))
	} else {
		line(13, fmt.Sprintf("Fix:%d Sats:%s", st.Quality.Quality, sats))
	}

	if st.Position.LocValid {
		line(26, fmt.Sprintf("%9.5f", st.Position.LatDeg))
		line(39, fmt.Sprintf("%9.5f", st.Position.LonDeg))
	} else {
		line(26, "Acquiring...")
	}

	switch {
	case st.LastError != "":
		line(52, "ERR: storage")
	case st.Recording:
		line(52, "REC "+filepath.Base(st.FilePath))
	case st.LastSaved != "":
		line(52, "Saved: "+filepath.Base(st.LastSaved))
	default:
		line(52, "Ready")
	}
	return img
}
