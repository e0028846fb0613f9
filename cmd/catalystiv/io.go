package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/catalystiv/pkg/models"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

func checkOutputFormat(f string) error {
	switch f {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (json, yaml)", f)
}

// decodeFile reads path into v, choosing the decoder from the extension:
// .yaml/.yml, .toml, anything else is JSON.
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := decodeBytes(filepath.Ext(path), data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func decodeBytes(ext string, data []byte, v interface{}) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		return toml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

// chainDoc is the on-disk form of an option chain. JSON and YAML files may
// also hold a bare list of rows; TOML needs the [[chain]] table form.
type chainDoc struct {
	Symbol          string       `json:"symbol"           yaml:"symbol"           toml:"symbol"`
	UnderlyingPrice *float64     `json:"underlying_price" yaml:"underlying_price" toml:"underlying_price"`
	Chain           models.Chain `json:"chain"            yaml:"chain"            toml:"chain"`
}

func loadChain(path string) (chainDoc, error) {
	var doc chainDoc
	err := decodeFile(path, &doc)
	if err == nil {
		return doc, nil
	}
	var rows models.Chain
	if decodeFile(path, &rows) == nil {
		return chainDoc{Chain: rows}, nil
	}
	return chainDoc{}, err
}

// writeOutput renders v as JSON or YAML.
func writeOutput(w io.Writer, format string, v interface{}) error {
	if format == formatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
