package subscriptions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "announcement_roles.json")
	idx := Index{
		"server": {RoleID: 759083170619588669},
		"event":  {RoleID: 11},
		"chess":  {RoleID: 941649245168091136, Club: true},
	}

	if err := idx.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex returned error: %v", err)
	}
	if !reflect.DeepEqual(idx, loaded) {
		t.Errorf("round trip mismatch\n got: %v\nwant: %v", loaded, idx)
	}
}

func TestIndexFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announcement_roles.json")
	if err := (Index{"chess": {RoleID: 20, Club: true}}).Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	want := "{\n    \"chess\": {\n        \"id\": 20,\n        \"club\": true\n    }\n}"
	if string(data) != want {
		t.Errorf("unexpected file content:\n%s", data)
	}
}

func TestLoadIndexMissingFile(t *testing.T) {
	idx, err := LoadIndex(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("expected empty index, got %v", idx)
	}
}

func TestLoadIndexMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "announcement_roles.json")
	if err := os.WriteFile(path, []byte(`{"chess": `), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadIndex(path)
	if !errors.Is(err, ErrMalformedIndex) {
		t.Fatalf("expected ErrMalformedIndex, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestIndexNamesSorted(t *testing.T) {
	idx := Index{"server": {}, "art": {}, "event": {}}
	if got := idx.Names(); !reflect.DeepEqual(got, []string{"art", "event", "server"}) {
		t.Errorf("unexpected names %v", got)
	}
}
