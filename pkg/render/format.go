package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPDF, FormatPNG, FormatJSON, FormatDOT}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// NeedsConverter reports whether f is produced by converting SVG.
func (f Format) NeedsConverter() bool {
	return f == FormatPDF || f == FormatPNG
}

// ParseFormat parses a single format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", s, formatList())
	}
	return f, nil
}

// ParseFormats parses a comma separated list such as "svg,json".
// Duplicates are dropped; order is kept.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
