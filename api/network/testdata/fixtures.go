// Package testdata provides test fixtures for controller client tests.
// The JSON files follow responses captured from UniFi controllers, with
// addresses and identifiers replaced.
package testdata

import (
	"embed"
	"encoding/json"
	"testing"
)

// FS embeds all JSON fixture files.
//
//go:embed */*.json
var FS embed.FS

// LoadFixture reads and returns fixture content as string.
// The path is relative to the testdata directory (e.g., "devices/list_success.json").
func LoadFixture(t testing.TB, path string) string {
	t.Helper()

	data, err := FS.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return string(data)
}

// LoadFixtureJSON reads fixture and unmarshals into provided value.
func LoadFixtureJSON(t testing.TB, path string, v any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", path, err)
	}
}
