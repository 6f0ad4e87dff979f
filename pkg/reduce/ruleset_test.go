package reduce

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/matzehuels/hypertile/pkg/errors"
)

func TestLoadRuleSetMatchesDefault(t *testing.T) {
	rs, err := LoadRuleSet(filepath.Join("testdata", "order5.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRuleSet(), rs)
}

func TestEncodeRuleSetDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRuleSet(&buf, DefaultRuleSet()))

	rs, err := DecodeRuleSet(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultRuleSet(), rs)
}

func TestDecodeRuleSetErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", `name = `},
		{"unknown key", "[[rule]]\nfrom = \"rl\"\ninto = \"\"\n"},
		{"bad symbol", "[[rule]]\nfrom = \"rx\"\nto = \"\"\n"},
		{"bad replacement", "[[rule]]\nfrom = \"rl\"\nto = \"R\"\n"},
		{"empty pattern", "[[rule]]\nfrom = \"\"\nto = \"r\"\n"},
		{"self rewrite", "[[rule]]\nfrom = \"ru\"\nto = \"ru\"\n"},
		{"empty suffix", "[[finisher]]\nsuffix = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRuleSet(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("DecodeRuleSet() error = nil, want error")
			}
			if !herrors.Is(err, herrors.ErrCodeInvalidConfig) {
				t.Errorf("DecodeRuleSet() code = %v, want %v", herrors.GetCode(err), herrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadRuleSetNamesFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[rule]]\nfrom = \"rl\"\nto = \"\"\n"), 0o644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, path, rs.Name)
	assert.Equal(t, []Rule{{"rl", ""}}, rs.Rules)
}

func TestLoadRuleSetMissing(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.toml"))
	if !herrors.Is(err, herrors.ErrCodeFileNotFound) {
		t.Errorf("LoadRuleSet() code = %v, want %v", herrors.GetCode(err), herrors.ErrCodeFileNotFound)
	}
}

func TestValidateWord(t *testing.T) {
	tests := []struct {
		word    string
		wantErr bool
	}{
		{"", false},
		{"udlr", false},
		{"uruurl", false},
		{"U", true},
		{"ux", true},
		{"u r", true},
	}
	for _, tt := range tests {
		err := Validate(tt.word)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.word, err, tt.wantErr)
		}
		if err != nil && !herrors.Is(err, herrors.ErrCodeInvalidWord) {
			t.Errorf("Validate(%q) code = %v, want %v", tt.word, herrors.GetCode(err), herrors.ErrCodeInvalidWord)
		}
	}
}

func TestDepth(t *testing.T) {
	if got := Depth("uruulu"); got != 4 {
		t.Errorf("Depth() = %d, want 4", got)
	}
	if got := Display(Origin); got != "(origin)" {
		t.Errorf("Display(Origin) = %q", got)
	}
}
