package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hypertile/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []Format
	}{
		{"svg", []Format{FormatSVG}},
		{"SVG, json", []Format{FormatSVG, FormatJSON}},
		{"png,svg,png", []Format{FormatPNG, FormatSVG}},
		{"dot,,pdf", []Format{FormatDOT, FormatPDF}},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseFormatsInvalid(t *testing.T) {
	for _, in := range []string{"", " , ", "gif", "svg,obj"} {
		_, err := ParseFormats(in)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormats(%q) error = %v, want %s", in, err, errors.ErrCodeInvalidFormat)
		}
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/octet-stream", Format("obj").ContentType())
	assert.True(t, FormatPNG.NeedsConverter())
	assert.False(t, FormatDOT.NeedsConverter())
}

func TestConvertWithoutConverter(t *testing.T) {
	old := rsvgConvert
	rsvgConvert = "hypertile-no-such-converter"
	t.Cleanup(func() { rsvgConvert = old })

	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported), "got %v", err)
	assert.False(t, Available())
}

func TestToPNGScale(t *testing.T) {
	_, err := ToPNG(context.Background(), []byte("<svg/>"), 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}
