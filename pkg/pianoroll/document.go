package pianoroll

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Orientation names the axis order of Document.Rows
type Orientation string

const (
	PitchMajor Orientation = "pitch-major"
	TimeMajor  Orientation = "time-major"
)

// Document is the file form of a matrix, stored as JSON or YAML
type Document struct {
	FS          float64     `json:"fs" yaml:"fs"`
	Orientation Orientation `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Rows        [][]int     `json:"rows" yaml:"rows,flow"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewDocument wraps a matrix in pitch-major form
func NewDocument(m *Matrix, fs float64) *Document {
	return &Document{
		FS:          fs,
		Orientation: PitchMajor,
		Rows:        m.Rows(),
	}
}

// Matrix validates the rows and returns them as a pitch-major matrix.
// With no orientation set, rows of exactly 128 columns are read as
// time-major unless there are also exactly 128 rows.
func (d *Document) Matrix() (*Matrix, error) {
	m, err := FromRows(d.Rows)
	if err != nil {
		return nil, err
	}

	switch d.Orientation {
	case PitchMajor:
		return m, nil
	case TimeMajor:
		return m.Transpose(), nil
	case "":
		if m.pitches != NumPitches && m.steps == NumPitches {
			return m.Transpose(), nil
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: got %q", ErrOrientation, d.Orientation)
	}
}

// ReadDocument decodes a document from r
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode roll document: %w", err)
	}
	return &doc, nil
}

// ReadYAMLDocument decodes a YAML document from r
func ReadYAMLDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode roll document: %w", err)
	}
	return &doc, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDocument reads a document from a JSON or, by extension, YAML file
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if isYAML(path) {
		return ReadYAMLDocument(f)
	}
	return ReadDocument(f)
}

// WriteTo encodes the document as JSON
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

func (d *Document) writeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes the document to path, as YAML when the extension says so
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if isYAML(path) {
		err = d.writeYAML(f)
	} else {
		_, err = d.WriteTo(f)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
