package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/gatetree/api"
)

// Encode writes doc as indented JSON.
func Encode(doc *api.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeYAML writes doc as YAML.
func EncodeYAML(doc *api.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Format names a document encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", ".json", "":
		return JSON, nil
	case "yaml", "yml", ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

// Marshal encodes doc in format f.
func (f Format) Marshal(doc *api.Document) ([]byte, error) {
	if f == YAML {
		return EncodeYAML(doc)
	}
	return Encode(doc)
}

// Unmarshal decodes data in format f.
func (f Format) Unmarshal(data []byte) (*api.Document, error) {
	if f == YAML {
		return DecodeYAML(data)
	}
	return Decode(data)
}
