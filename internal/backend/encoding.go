package backend

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingResult is the outcome of sniffing a payload's text encoding.
type EncodingResult struct {
	Encoding   string
	Confidence float64
	HasBOM     bool
}

const maxProbeSize = 8192

// DetectEncoding sniffs the encoding of a foo payload header. Foo payloads
// are text containers, so an undecodable header means a truncated or
// corrupted file.
func DetectEncoding(data []byte) EncodingResult {
	if len(data) == 0 {
		return EncodingResult{Encoding: "utf-8", Confidence: 1.0}
	}

	if result := detectBOM(data); result.Confidence == 1.0 {
		return result
	}

	sample := data
	if len(sample) > maxProbeSize {
		sample = data[:maxProbeSize]
	}

	// Null bytes never appear in single-byte text, so probe for UTF-16
	// before the ASCII and UTF-8 checks would swallow them.
	if bytes.IndexByte(sample, 0) >= 0 {
		if score := scoreUTF16(sample, 1); score > 0 {
			return EncodingResult{Encoding: "utf-16le", Confidence: score}
		}
		if score := scoreUTF16(sample, 0); score > 0 {
			return EncodingResult{Encoding: "utf-16be", Confidence: score}
		}
	}

	if isASCII(sample) {
		return EncodingResult{Encoding: "ascii", Confidence: 1.0}
	}
	if utf8.Valid(sample) {
		return EncodingResult{Encoding: "utf-8", Confidence: 0.95}
	}

	// Single-byte payloads from legacy exporters decode under Windows-1252;
	// C1 control bytes drop the confidence.
	confidence := 0.6
	for _, b := range sample {
		if b >= 0x80 && b <= 0x9F {
			confidence = 0.3
			break
		}
	}
	return EncodingResult{Encoding: "windows-1252", Confidence: confidence}
}

func detectBOM(data []byte) EncodingResult {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return EncodingResult{Encoding: "utf-8", Confidence: 1.0, HasBOM: true}
	}
	if len(data) >= 2 {
		if bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
			return EncodingResult{Encoding: "utf-16le", Confidence: 1.0, HasBOM: true}
		}
		if bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
			return EncodingResult{Encoding: "utf-16be", Confidence: 1.0, HasBOM: true}
		}
	}
	return EncodingResult{}
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b > 127 {
			return false
		}
	}
	return true
}

// scoreUTF16 checks the null-byte pattern at the given parity (1 for LE,
// 0 for BE).
func scoreUTF16(data []byte, offset int) float64 {
	if len(data) < 2 || len(data)%2 != 0 {
		return 0
	}

	nullCount := 0
	for i := offset; i < len(data); i += 2 {
		if data[i] == 0 {
			nullCount++
		}
	}

	if float64(nullCount)/float64(len(data)/2) > 0.75 {
		return 0.8
	}
	return 0
}

// DecodeToUTF8 converts a payload to UTF-8 according to its detected
// encoding, replacing invalid sequences rather than failing.
func DecodeToUTF8(data []byte, detected EncodingResult) string {
	data = stripBOM(data, detected)

	switch detected.Encoding {
	case "ascii":
		return string(data)
	case "utf-8":
		return string(bytes.ToValidUTF8(data, []byte("�")))
	case "utf-16le":
		return decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case "utf-16be":
		return decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case "windows-1252":
		return decodeWith(data, charmap.Windows1252.NewDecoder())
	default:
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
}

func stripBOM(data []byte, detected EncodingResult) []byte {
	if !detected.HasBOM {
		return data
	}

	switch detected.Encoding {
	case "utf-8":
		if len(data) >= 3 {
			return data[3:]
		}
	case "utf-16le", "utf-16be":
		if len(data) >= 2 {
			return data[2:]
		}
	}
	return data
}

func decodeWith(data []byte, decoder *encoding.Decoder) string {
	if len(data) == 0 {
		return ""
	}

	reader := transform.NewReader(bytes.NewReader(data), decoder)
	result, err := io.ReadAll(reader)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	return string(bytes.ToValidUTF8(result, []byte("�")))
}

// ProbeFileEncoding sniffs the leading bytes of a file on disk.
func ProbeFileEncoding(path string) (EncodingResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return EncodingResult{}, err
	}
	defer file.Close()

	probe := make([]byte, maxProbeSize)
	n, err := file.Read(probe)
	if err != nil && err != io.EOF {
		return EncodingResult{}, err
	}

	return DetectEncoding(probe[:n]), nil
}
