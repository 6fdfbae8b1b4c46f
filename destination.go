package uvpaint

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
)

// DestinationProvider chooses where a saved texture is written.
type DestinationProvider interface {
	// Destination returns the target file path for a texture with the given extension.
	// ErrUserCancelled is returned when an interactive choice is aborted.
	Destination(ext string) (string, error)
}

// Fixed always writes to the same path.
// The codec extension is appended when the path has none.
type Fixed struct {
	Path string
}

// Destination implements DestinationProvider.
func (f Fixed) Destination(ext string) (string, error) {
	if f.Path == "" {
		return "", errors.New("empty destination path")
	}
	path := f.Path
	if filepath.Ext(path) == "" {
		path += ext
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("could not create the destination directory: %w", err)
	}
	return path, nil
}

// SaveDirName is the application-private directory, relative to the home directory.
const SaveDirName = ".uvpaint/SavedTextures"

// Timestamped names the saved textures after the time they were saved,
// inside an application-private directory.
type Timestamped struct {
	Dir string
	Now func() time.Time
}

// NewTimestamped returns a Timestamped provider rooted in the user's home directory.
func NewTimestamped() (*Timestamped, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("could not locate the home directory: %w", err)
	}
	return &Timestamped{Dir: filepath.Join(home, SaveDirName)}, nil
}

// Destination implements DestinationProvider.
func (t *Timestamped) Destination(ext string) (string, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create the save directory: %w", err)
	}

	name := "PaintedTexture " + now().Format("2006-01-02 15-04")
	path := filepath.Join(t.Dir, name+ext)
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(t.Dir, name+" "+uuid.NewString()[:8]+ext)
	}
	return path, nil
}

// Prompt asks for the destination path on a terminal.
// An empty answer, or the end of the input, cancels the save.
type Prompt struct {
	In   io.Reader
	Out  io.Writer
	Dir  string // relative answers are resolved against Dir
	Name string // suggested file name, without extension

	reader *bufio.Reader
}

// Destination implements DestinationProvider.
func (p *Prompt) Destination(ext string) (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	if p.Out != nil {
		suggestion := p.Name
		if suggestion == "" {
			suggestion = "PaintedTexture"
		}
		fmt.Fprintf(p.Out, "Save texture as (e.g. %s%s, empty to cancel): ", suggestion, ext)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return "", ErrUserCancelled
	}

	if expanded, err := homedir.Expand(answer); err == nil {
		answer = expanded
	}
	if !filepath.IsAbs(answer) && p.Dir != "" {
		answer = filepath.Join(p.Dir, answer)
	}
	if !strings.EqualFold(filepath.Ext(answer), ext) {
		answer += ext
	}
	if err := os.MkdirAll(filepath.Dir(answer), 0o755); err != nil {
		return "", fmt.Errorf("could not create the destination directory: %w", err)
	}
	return answer, nil
}
