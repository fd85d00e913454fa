package livebind

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrDeclParse reports a YAML declaration that could not be decoded.
type ErrDeclParse struct {
	Path string
	Err  error
}

func (e ErrDeclParse) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse declaration: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse declaration %s: %v", e.Path, e.Err)
}

func (e ErrDeclParse) Unwrap() error { return e.Err }

// ParseFactory decodes a component declaration:
//
//	name: app
//	kind: frame
//	children:
//	  - name: row
//	    kind: label
//	    for: player
//	    in: players
//	    style:
//	      text: "{{ player.name }}"
//
// Unknown fields are rejected. The result is validated when passed to New.
func ParseFactory(data []byte) (*Factory, error) {
	var f Factory
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrDeclParse{Err: errors.New("empty document")}
		}
		return nil, ErrDeclParse{Err: err}
	}
	return &f, nil
}

// LoadFactory reads and decodes a declaration file.
func LoadFactory(path string) (*Factory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration: %w", err)
	}
	f, err := ParseFactory(data)
	if err != nil {
		var pe ErrDeclParse
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}
	return f, nil
}

// ParseData decodes a YAML mapping used as the root data of a tree.
func ParseData(data []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, ErrDeclParse{Err: err}
	}
	return out, nil
}

// LoadData reads and decodes a data file.
func LoadData(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	out, err := ParseData(data)
	if err != nil {
		return nil, ErrDeclParse{Path: path, Err: errors.Unwrap(err)}
	}
	return out, nil
}
