package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBatchList(t *testing.T) {
	path := writeList(t, `
- host: one.example.net:8080
  kind: download
  bytes: 1048576
  connections: 4
- host: two.example.net:8080
  kind: ping
`)
	entries, err := ReadBatchList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Bytes != 1048576 || entries[0].Connections != 4 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Kind != "ping" || entries[1].Bytes != 0 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestReadBatchListMissingHost(t *testing.T) {
	path := writeList(t, "- kind: download\n")
	if _, err := ReadBatchList(path); err == nil {
		t.Error("expected error for missing host")
	}
}

func TestReadBatchListUnknownKind(t *testing.T) {
	path := writeList(t, "- host: a:1\n  kind: teleport\n")
	if _, err := ReadBatchList(path); err == nil {
		t.Error("expected error for unknown kind")
	}
}
