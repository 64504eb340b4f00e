package render

import (
	"bytes"
	"strings"
	"time"
)

const (
	// Banner is the first line of every generated file.
	Banner = "/* annogen generated file: do not edit by hand, annotation blocks below are read back on the next run. */"
	// Footer closes every generated file.
	Footer = "/* end of generated annotations */"

	stampPrefix = "/* generated: "
	stampSuffix = " */"
)

// NewHeader builds the header of a first-run output file.
func NewHeader(now time.Time, layout string) string {
	if layout == "" {
		layout = time.RFC3339
	}
	return Banner + "\n" + stampPrefix + now.UTC().Format(layout) + stampSuffix + "\n"
}

// ExtractHeader returns the banner and timestamp lines of a previous output so
// reruns keep them byte for byte. ok is false when prev is not ours.
func ExtractHeader(prev []byte) (string, bool) {
	rest, ok := bytes.CutPrefix(prev, []byte(Banner))
	if !ok {
		return "", false
	}
	rest = trimEOL(rest)
	if rest == nil {
		return "", false
	}
	end := bytes.IndexAny(rest, "\r\n")
	if end < 0 {
		end = len(rest)
	}
	stamp := string(rest[:end])
	if !strings.HasPrefix(stamp, stampPrefix) || !strings.HasSuffix(stamp, stampSuffix) {
		return "", false
	}
	return Banner + "\n" + stamp + "\n", true
}

// Timestamp returns the timestamp text of a header built by NewHeader.
func Timestamp(header string) string {
	_, stamp, _ := strings.Cut(header, "\n")
	stamp = strings.TrimSuffix(stamp, "\n")
	stamp = strings.TrimPrefix(stamp, stampPrefix)
	return strings.TrimSuffix(stamp, stampSuffix)
}

func trimEOL(b []byte) []byte {
	switch {
	case bytes.HasPrefix(b, []byte("\r\n")):
		return b[2:]
	case bytes.HasPrefix(b, []byte("\n")), bytes.HasPrefix(b, []byte("\r")):
		return b[1:]
	default:
		return nil
	}
}
