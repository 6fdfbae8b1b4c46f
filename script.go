package uvpaint

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/uvpaint/uvpaint/scene"
	"gopkg.in/yaml.v3"
)

// Script is a recorded painting session, replayed frame by frame.
//
//	color: "#ff0000"
//	steps:
//	  - size: 0.5
//	  - stroke: {from: [10, 10], to: [90, 90], frames: 40}
//	  - mode: decal
//	  - at: [50, 50]
//	    down: true
//	  - save: true
//
// Screen positions are in pixels, with the origin at the bottom-left corner.
type Script struct {
	Color string `yaml:"color"`
	Steps []Step `yaml:"steps"`
}

// Step is a single script instruction. Only the set fields are applied,
// in this order: color, mode, size, reset, pointer frames, wait, save, load.
type Step struct {
	Color  string    `yaml:"color,omitempty"`
	Mode   string    `yaml:"mode,omitempty"`
	Size   *float64  `yaml:"size,omitempty"`
	Reset  bool      `yaml:"reset,omitempty"`
	At     []float32 `yaml:"at,omitempty"`
	Down   bool      `yaml:"down,omitempty"`
	Repeat int       `yaml:"repeat,omitempty"`
	Stroke *Stroke   `yaml:"stroke,omitempty"`
	Wait   int       `yaml:"wait,omitempty"`
	Save   bool      `yaml:"save,omitempty"`
	Load   bool      `yaml:"load,omitempty"`
}

// Stroke moves the pressed pointer along a line.
type Stroke struct {
	From   []float32 `yaml:"from"`
	To     []float32 `yaml:"to"`
	Frames int       `yaml:"frames"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the script: %w", err)
	}
	defer f.Close()
	return ParseScript(f)
}

// ParseScript decodes a YAML script.
func ParseScript(r io.Reader) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode the script: %w", err)
	}
	return &sc, nil
}

type action struct {
	frame *Frame
	cmd   func(ctx context.Context, s *Session) error
}

// ScriptSource replays a Script as a FrameSource.
type ScriptSource struct {
	actions []action
	pos     int
	err     error
}

// NewScriptSource validates the script and prepares its frames.
// The brush color starts as initial unless the script sets its own.
func NewScriptSource(sc *Script, initial Color) (*ScriptSource, error) {
	color := initial
	if sc.Color != "" {
		c, err := ParseHex(sc.Color)
		if err != nil {
			return nil, err
		}
		color = c
	}

	var actions []action
	pointer := Pointer{}
	emit := func(p Pointer) {
		pointer = p
		actions = append(actions, action{frame: &Frame{Pointer: p, Color: color}})
	}
	command := func(fn func(ctx context.Context, s *Session) error) {
		actions = append(actions, action{cmd: fn})
	}

	for i, st := range sc.Steps {
		fail := func(err error) (*ScriptSource, error) {
			return nil, fmt.Errorf("script step %d: %w", i+1, err)
		}
		if st.Color != "" {
			c, err := ParseHex(st.Color)
			if err != nil {
				return fail(err)
			}
			color = c
		}
		if st.Mode != "" {
			mode, err := ParseBrushModeName(st.Mode)
			if err != nil {
				return fail(err)
			}
			command(func(_ context.Context, s *Session) error { return s.SetBrushMode(mode) })
		}
		if st.Size != nil {
			size := *st.Size
			command(func(_ context.Context, s *Session) error {
				s.SetBrushSize(size)
				return nil
			})
		}
		if st.Reset {
			command(func(_ context.Context, s *Session) error {
				s.ResetPainting()
				return nil
			})
		}
		if st.At != nil {
			pos, err := toVec2(st.At)
			if err != nil {
				return fail(err)
			}
			for n := max(st.Repeat, 1); n > 0; n-- {
				emit(Pointer{Pos: pos, Down: st.Down})
			}
		}
		if st.Stroke != nil {
			from, err := toVec2(st.Stroke.From)
			if err != nil {
				return fail(err)
			}
			to, err := toVec2(st.Stroke.To)
			if err != nil {
				return fail(err)
			}
			n := max(st.Stroke.Frames, 2)
			for k := 0; k < n; k++ {
				t := float32(k) / float32(n-1)
				emit(Pointer{Pos: from.Add(to.Sub(from).Scale(t)), Down: true})
			}
			emit(Pointer{Pos: to})
		}
		for n := st.Wait; n > 0; n-- {
			emit(Pointer{Pos: pointer.Pos})
		}
		if st.Save {
			command(func(ctx context.Context, s *Session) error {
				s.SaveTexture()
				return s.Settle(ctx)
			})
		}
		if st.Load {
			command(func(ctx context.Context, s *Session) error {
				if !s.LoadLastSaved() {
					return nil
				}
				return s.Settle(ctx)
			})
		}
	}
	return &ScriptSource{actions: actions}, nil
}

// Next implements FrameSource.
func (src *ScriptSource) Next(ctx context.Context, s *Session) (Frame, bool) {
	for src.pos < len(src.actions) {
		a := src.actions[src.pos]
		src.pos++
		if a.frame != nil {
			return *a.frame, true
		}
		if err := a.cmd(ctx, s); err != nil {
			src.err = err
			return Frame{}, false
		}
	}
	return Frame{}, false
}

// Len returns the number of frames the script produces.
func (src *ScriptSource) Len() int {
	n := 0
	for _, a := range src.actions {
		if a.frame != nil {
			n++
		}
	}
	return n
}

// Err returns the error which stopped the replay, if any.
func (src *ScriptSource) Err() error {
	return src.err
}

func toVec2(v []float32) (scene.Vec2, error) {
	if len(v) != 2 {
		return scene.Vec2{}, fmt.Errorf("expected a [x, y] position, got %v", v)
	}
	return scene.V2(v[0], v[1]), nil
}
