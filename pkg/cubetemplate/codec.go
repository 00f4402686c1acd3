package cubetemplate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const templateMagic = "CTPL"

// Template format errors.
var (
	ErrInvalidMagic       = errors.New("invalid template magic: expected 'CTPL'")
	ErrUnsupportedVersion = errors.New("unsupported template version")
	ErrTruncatedData      = errors.New("truncated template data")
	ErrConfigurationCount = errors.New("unexpected configuration count")
)

// Version is the template file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentVersion is written by Encode.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Parse decodes a template file from raw bytes.
//
// Layout (little endian):
//
//	"CTPL" | major u8 | minor u8 | configurations u32 | maxVertices u32
//	counts [configurations]u32
//	vertices [configurations*maxVertices]{px py pz nx ny nz f32}
func Parse(data []byte) (*Template, error) {
	if len(data) < 14 {
		return nil, ErrTruncatedData
	}
	if string(data[0:4]) != templateMagic {
		return nil, ErrInvalidMagic
	}

	version := Version{Major: data[4], Minor: data[5]}
	if version.Major != CurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var configurations, maxVertices uint32
	if err := binary.Read(r, binary.LittleEndian, &configurations); err != nil {
		return nil, fmt.Errorf("%w: reading configuration count", ErrTruncatedData)
	}
	if err := binary.Read(r, binary.LittleEndian, &maxVertices); err != nil {
		return nil, fmt.Errorf("%w: reading max vertices", ErrTruncatedData)
	}
	if configurations != ConfigurationCount {
		return nil, fmt.Errorf("%w: %d", ErrConfigurationCount, configurations)
	}
	if maxVertices == 0 || maxVertices > 1024 {
		return nil, fmt.Errorf("invalid max vertices per configuration: %d", maxVertices)
	}

	t := &Template{
		VertexCounts: make([]uint32, configurations),
		MaxVertices:  int(maxVertices),
		Vertices:     make([]Vertex, int(configurations)*int(maxVertices)),
	}
	if err := binary.Read(r, binary.LittleEndian, t.VertexCounts); err != nil {
		return nil, fmt.Errorf("%w: reading vertex counts", ErrTruncatedData)
	}

	raw := make([]float32, 6*len(t.Vertices))
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("%w: reading vertex table", ErrTruncatedData)
	}
	for i := range t.Vertices {
		f := raw[i*6 : i*6+6]
		t.Vertices[i].Position = [3]float32{f[0], f[1], f[2]}
		t.Vertices[i].Normal = [3]float32{f[3], f[4], f[5]}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode writes t in the format read by Parse.
func (t *Template) Encode(w io.Writer) error {
	if err := t.Validate(); err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	buf.WriteString(templateMagic)
	buf.WriteByte(CurrentVersion.Major)
	buf.WriteByte(CurrentVersion.Minor)
	binary.Write(buf, binary.LittleEndian, uint32(len(t.VertexCounts)))
	binary.Write(buf, binary.LittleEndian, uint32(t.MaxVertices))
	binary.Write(buf, binary.LittleEndian, t.VertexCounts)

	raw := make([]float32, 0, 6*len(t.Vertices))
	for _, v := range t.Vertices {
		raw = append(raw, v.Position[0], v.Position[1], v.Position[2], v.Normal[0], v.Normal[1], v.Normal[2])
	}
	binary.Write(buf, binary.LittleEndian, raw)

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFile parses a template file from disk.
func ReadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return Parse(data)
}

// WriteFile saves t to disk.
func (t *Template) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
