package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDetectRailsFromLockfile(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"Gemfile.lock": `GEM
  remote: https://rubygems.org/
  specs:
    rack (3.0.8)
    rails (7.1.2)
    railties (7.1.2)
`,
		"Gemfile": `source 'https://rubygems.org'
gem 'rails'
`,
	})

	isRails, version := DetectRails(dir)
	assert.True(t, isRails)
	assert.Equal(t, "7.1.2", version, "lockfile version wins over the Gemfile")
}

func TestDetectRailsFromGemfile(t *testing.T) {
	tests := []struct {
		name    string
		gemfile string
		version string
	}{
		{"with version", `gem 'rails', '~> 7.0'`, "~> 7.0"},
		{"without version", `gem 'rails'`, ""},
		{"double quotes", `gem "rails", "6.1.0"`, "6.1.0"},
		{"railties only", `gem 'railties', '~> 7.0'`, "~> 7.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRepo(t, map[string]string{"Gemfile": tt.gemfile + "\n"})
			isRails, version := DetectRails(dir)
			assert.True(t, isRails)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestDetectRailsAbsent(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"Gemfile": `source 'https://rubygems.org'
gem 'sinatra'
`,
	})

	isRails, version := DetectRails(dir)
	assert.False(t, isRails)
	assert.Empty(t, version)
}

func TestDetectRailsNoManifests(t *testing.T) {
	isRails, _ := DetectRails(t.TempDir())
	assert.False(t, isRails)
}
