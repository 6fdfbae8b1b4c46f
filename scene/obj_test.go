package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v -0.5 -0.5 0
v 0.5 -0.5 0
v 0.5 0.5 0
v -0.5 0.5 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestOBJ_ParseQuad(t *testing.T) {
	assert := assert.New(t)

	m, err := ParseOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)

	assert.Len(m.Positions, 4)
	assert.Len(m.UVs, 4)
	assert.Equal([]int{0, 1, 2, 0, 2, 3}, m.Indices)
	assert.Equal(V2(1, 1), m.UVs[2])

	_, uv, ok := m.Intersect(Ray{Origin: V3(0, 0, 1), Dir: V3(0, 0, -1)}, 10)
	assert.True(ok)
	assert.InDelta(0.5, uv.X, 1e-5)
	assert.InDelta(0.5, uv.Y, 1e-5)
}

func TestOBJ_NegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf -3/-3 -2/-2 -1/-1\n"
	m, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, V2(1, 0), m.UVs[1])
}

func TestOBJ_Errors(t *testing.T) {
	testCases := map[string]string{
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"bad vertex":   "v 0 zero 0\n",
		"no triangles": "v 0 0 0\n",
	}
	for name, src := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestOBJ_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0644))

	m, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.NoError(t, m.Validate())

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}
