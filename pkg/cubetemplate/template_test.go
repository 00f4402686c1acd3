package cubetemplate

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/octomesh/pkg/voxel"
)

func TestBasicCounts(t *testing.T) {
	tmpl := Basic()
	require.NoError(t, tmpl.Validate())

	for id := 0; id < ConfigurationCount; id++ {
		want := uint32(bits.OnesCount(uint(id)) * VerticesPerFace)
		if got := tmpl.Count(id); got != want {
			t.Errorf("Count(%d) = %d, want %d", id, got, want)
		}
	}
	assert.Equal(t, 36, len(tmpl.VerticesOf(ConfigurationCount-1)))
	assert.Empty(t, tmpl.VerticesOf(0))
}

func TestBasicFaceNormalsPointOutward(t *testing.T) {
	tmpl := Basic()
	for _, f := range Faces {
		for _, v := range tmpl.VerticesOf(int(f)) {
			if v.Normal != f.Normal() {
				t.Fatalf("face %d: normal %v, want %v", f, v.Normal, f.Normal())
			}
			if d := v.Position.Dot(v.Normal); d != 0.5 {
				t.Errorf("face %d: vertex %v not on face plane (dot %v)", f, v.Position, d)
			}
		}
	}
}

func TestConfigurationID(t *testing.T) {
	g, err := voxel.New(4)
	require.NoError(t, err)

	assert.Equal(t, -1, ConfigurationID(g, 1, 1, 1), "empty cell")

	g.Set(1, 1, 1, 1)
	assert.Equal(t, ConfigurationCount-1, ConfigurationID(g, 1, 1, 1), "isolated cell")

	g.Set(2, 1, 1, 1)
	assert.Equal(t, (ConfigurationCount-1)&^int(FacePosX), ConfigurationID(g, 1, 1, 1))
	assert.Equal(t, (ConfigurationCount-1)&^int(FaceNegX), ConfigurationID(g, 2, 1, 1))

	g.Fill([3]int{0, 0, 0}, [3]int{4, 4, 4}, 1)
	assert.Equal(t, 0, ConfigurationID(g, 1, 1, 1), "enclosed cell")
	assert.Equal(t, int(FaceNegX|FaceNegY|FaceNegZ), ConfigurationID(g, 0, 0, 0), "grid corner")
}

func TestEncodeParseRoundTrip(t *testing.T) {
	tmpl := Basic()
	path := filepath.Join(t.TempDir(), "BasicCube.ctpl")
	require.NoError(t, tmpl.WriteFile(path))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tmpl.VertexCounts, loaded.VertexCounts)
	assert.Equal(t, tmpl.MaxVertices, loaded.MaxVertices)
	assert.Equal(t, tmpl.Vertices, loaded.Vertices)
}

func TestParseErrors(t *testing.T) {
	header := func(magic string, major uint8, configs, maxVerts uint32) *bytes.Buffer {
		buf := new(bytes.Buffer)
		buf.WriteString(magic)
		buf.WriteByte(major)
		buf.WriteByte(0)
		binary.Write(buf, binary.LittleEndian, configs)
		binary.Write(buf, binary.LittleEndian, maxVerts)
		return buf
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("CTPL"), ErrTruncatedData},
		{"magic", header("NOPE", 1, 64, 36).Bytes(), ErrInvalidMagic},
		{"version", header("CTPL", 9, 64, 36).Bytes(), ErrUnsupportedVersion},
		{"configurations", header("CTPL", 1, 12, 36).Bytes(), ErrConfigurationCount},
		{"counts", header("CTPL", 1, 64, 36).Bytes(), ErrTruncatedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
