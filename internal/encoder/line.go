package encoder

import (
	"bytes"
	"strconv"

	"uptime-reporter/internal/domain"
)

// AppendLine appends one "<path> <value> <timestamp>\n" record to dst.
func AppendLine(dst []byte, line domain.MetricLine) []byte {
	dst = append(dst, line.Path...)
	dst = append(dst, ' ')
	switch line.Kind {
	case domain.KindInteger:
		dst = strconv.AppendInt(dst, int64(line.Value), 10)
	default:
		dst = strconv.AppendFloat(dst, line.Value, 'f', 6, 64)
	}
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, line.Timestamp, 10)
	return append(dst, '\n')
}

// Render concatenates a batch into the plaintext wire format.
func Render(lines []domain.MetricLine) []byte {
	var buf bytes.Buffer
	buf.Grow(len(lines) * 64)
	scratch := make([]byte, 0, 128)
	for _, l := range lines {
		scratch = AppendLine(scratch[:0], l)
		buf.Write(scratch)
	}
	return buf.Bytes()
}

// FormatLine renders a single line without the trailing newline.
func FormatLine(line domain.MetricLine) string {
	b := AppendLine(nil, line)
	return string(b[:len(b)-1])
}
