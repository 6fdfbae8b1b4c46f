package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadOBJ opens and parses a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the mesh file: %w", err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return m, nil
}

// ParseOBJ reads the vertex positions, texture coordinates and faces of a
// Wavefront OBJ stream. Polygons are triangulated as fans. Every face corner
// becomes its own vertex, since positions and texture coordinates are indexed
// separately in OBJ. Corners without texture coordinate get UV (0,0).
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []Vec3
		texcoords []Vec2
		mesh      = &Mesh{}
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, V3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			texcoords = append(texcoords, V2(v[0], v[1]))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: a face needs at least three vertices", line)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				pi, ti, err := parseCorner(ref, len(positions), len(texcoords))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				uv := Vec2{}
				if ti >= 0 {
					uv = texcoords[ti]
				}
				mesh.Positions = append(mesh.Positions, positions[pi])
				mesh.UVs = append(mesh.UVs, uv)
				corners = append(corners, len(mesh.Positions)-1)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner resolves a "v", "v/vt", "v//vn" or "v/vt/vn" face reference into
// zero based position and texture indices. Negative references count from the end.
func parseCorner(ref string, np, nt int) (int, int, error) {
	parts := strings.Split(ref, "/")

	pi, err := resolveIndex(parts[0], np)
	if err != nil {
		return 0, 0, err
	}
	ti := -1
	if len(parts) > 1 && parts[1] != "" {
		if ti, err = resolveIndex(parts[1], nt); err != nil {
			return 0, 0, err
		}
	}
	return pi, ti, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q", s)
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("face index %s out of range", s)
	}
	return i, nil
}
