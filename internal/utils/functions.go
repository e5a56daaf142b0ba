package utils

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BatchEntry is one host to test in a batch run.
type BatchEntry struct {
	Host        string `yaml:"host"`
	Kind        string `yaml:"kind"` // upload, download or ping
	Bytes       int64  `yaml:"bytes,omitempty"`
	Connections int    `yaml:"connections,omitempty"`
}

// ReadBatchList parses a YAML list of batch entries.
func ReadBatchList(filePath string) ([]BatchEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %v", err)
	}
	var entries []BatchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %v", err)
	}
	for i, entry := range entries {
		if entry.Host == "" {
			return nil, fmt.Errorf("missing host for entry %d", i+1)
		}
		switch strings.ToLower(entry.Kind) {
		case "upload", "download", "ping":
		default:
			return nil, fmt.Errorf("unknown kind %q for entry %d", entry.Kind, i+1)
		}
	}
	return entries, nil
}

// NewHTTPClient builds the client used for catalog fetches.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:       10,
			IdleConnTimeout:    30 * time.Second,
			DisableCompression: true,
		},
	}
}
