package optimizer

import "bytes"

// JPEG segment markers involved in metadata carry-over
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerAPP0   = 0xE0
	markerAPP1   = 0xE1
	markerSOS    = 0xDA
)

var exifHeader = []byte("Exif\x00\x00")

// exifSegment extracts the complete APP1/Exif segment (marker, length and
// payload) from a JPEG stream, or nil when the stream carries none. Malformed
// streams also yield nil; metadata carry-over is best effort.
func exifSegment(data []byte) []byte {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil
	}

	offset := 2
	for offset+4 <= len(data) {
		if data[offset] != markerPrefix {
			return nil
		}
		marker := data[offset+1]
		if marker == markerSOS {
			// Entropy-coded data begins, no more metadata segments
			return nil
		}

		length := int(data[offset+2])<<8 | int(data[offset+3])
		end := offset + 2 + length
		if length < 2 || end > len(data) {
			return nil
		}

		if marker == markerAPP1 && bytes.HasPrefix(data[offset+4:end], exifHeader) {
			segment := make([]byte, end-offset)
			copy(segment, data[offset:end])
			return segment
		}
		offset = end
	}
	return nil
}

// spliceExif inserts an APP1/Exif segment into a freshly encoded JPEG
// stream, after the SOI marker and any JFIF APP0 segment. The input is
// returned unchanged when it does not look like a JPEG.
func spliceExif(encoded, segment []byte) []byte {
	if len(segment) == 0 {
		return encoded
	}
	if len(encoded) < 2 || encoded[0] != markerPrefix || encoded[1] != markerSOI {
		return encoded
	}

	insertAt := 2
	if len(encoded) >= insertAt+4 && encoded[insertAt] == markerPrefix && encoded[insertAt+1] == markerAPP0 {
		length := int(encoded[insertAt+2])<<8 | int(encoded[insertAt+3])
		if length >= 2 && insertAt+2+length <= len(encoded) {
			insertAt += 2 + length
		}
	}

	out := make([]byte, 0, len(encoded)+len(segment))
	out = append(out, encoded[:insertAt]...)
	out = append(out, segment...)
	out = append(out, encoded[insertAt:]...)
	return out
}
