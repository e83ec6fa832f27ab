// Package nmea reassembles a raw GPS byte stream into NMEA 0183 sentences
// and extracts fix-quality fields from GGA sentences.
package nmea

// maxSentenceLen bounds the line buffer. NMEA 0183 caps sentences at 82
// characters; anything past this is line noise or a desynced stream.
const maxSentenceLen = 128

// Assembler accumulates bytes into complete, LF-terminated sentences.
// Carriage returns are discarded. Oversized lines are dropped through the
// next LF so the assembler resynchronizes on noisy input.
type Assembler struct {
	buf      []byte
	overflow bool
}

// Feed consumes one byte. When the byte completes a sentence, the sentence
// is returned (without its CR/LF terminator) with ok=true.
func (a *Assembler) Feed(b byte) (sentence string, ok bool) {
	switch b {
	case '\r':
		return "", false
	case '\n':
		if a.overflow {
			a.overflow = false
			a.buf = a.buf[:0]
			return "", false
		}
		s := string(a.buf)
		a.buf = a.buf[:0]
		return s, true
	default:
		if a.overflow {
			return "", false
		}
		if len(a.buf) >= maxSentenceLen {
			a.overflow = true
			a.buf = a.buf[:0]
			return "", false
		}
		a.buf = append(a.buf, b)
		return "", false
	}
}
