package uvpaint

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uvpaint/uvpaint/prefs"
	"github.com/uvpaint/uvpaint/utils"
)

type emptyCodec struct{}

func (emptyCodec) Ext() string                        { return ".png" }
func (emptyCodec) Encode(image.Image) ([]byte, error) { return nil, nil }

type cancelledDestination struct{}

func (cancelledDestination) Destination(string) (string, error) { return "", ErrUserCancelled }

// opaqueImage returns an image holding every web safe color, without transparency.
func opaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillDrawImage(img, palette.WebSafe)
	return img
}

func TestPersistence_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{PNG{}, BMP{}} {
		t.Run(codec.Ext(), func(t *testing.T) {
			store := prefs.NewMemory()
			p := NewPersistence(Fixed{Path: filepath.Join(t.TempDir(), "texture")}, store)
			p.Codec = codec

			src := opaqueImage(64, 48)
			ref, err := p.Save(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, codec.Ext(), filepath.Ext(string(ref)))

			last, ok := p.LastSavedRef()
			assert.True(t, ok)
			assert.Equal(t, ref, last)

			img, err := p.Load(context.Background(), last)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), img.Bounds())
			assert.Equal(t, src.Pix, img.Pix)
		})
	}
}

func TestPersistence_SaveDropsAlpha(t *testing.T) {
	p := NewPersistence(Fixed{Path: filepath.Join(t.TempDir(), "texture.png")}, prefs.NewMemory())

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	ref, err := p.Save(context.Background(), src)
	require.NoError(t, err)

	img, err := p.Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, img.NRGBAAt(0, 0))
}

func TestPersistence_EmptyEncodingKeepsRef(t *testing.T) {
	store := prefs.NewMemory()
	require.NoError(t, store.SetString(PrefsKey, "/previous.png"))

	dir := t.TempDir()
	p := NewPersistence(Fixed{Path: filepath.Join(dir, "texture.png")}, store)
	p.Codec = emptyCodec{}

	_, err := p.Save(context.Background(), opaqueImage(4, 4))
	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, "/previous.png", store.GetString(PrefsKey))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPersistence_CancelledDestination(t *testing.T) {
	store := prefs.NewMemory()
	p := NewPersistence(cancelledDestination{}, store)

	_, err := p.Save(context.Background(), opaqueImage(4, 4))
	assert.ErrorIs(t, err, ErrUserCancelled)

	_, ok := p.LastSavedRef()
	assert.False(t, ok)
}

func TestPersistence_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	text := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(text, []byte("definitely not an image"), 0o644))

	p := NewPersistence(Fixed{Path: filepath.Join(dir, "out.png")}, prefs.NewMemory())

	testCases := []struct {
		name string
		ref  Ref
		is   error
	}{
		{name: "missing", ref: Ref(filepath.Join(dir, "missing.png"))},
		{name: "empty", ref: Ref(empty)},
		{name: "not an image", ref: Ref(text), is: utils.ErrNotImage},
		{name: "no reference", ref: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img, err := p.Load(context.Background(), tc.ref)
			assert.Nil(t, img)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tc.ref, loadErr.Ref)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestPersistence_LastSavedRefPersistsInFile(t *testing.T) {
	dir := t.TempDir()
	store, err := prefs.Open(filepath.Join(dir, "prefs.toml"))
	require.NoError(t, err)

	p := NewPersistence(Fixed{Path: filepath.Join(dir, "texture.png")}, store)
	ref, err := p.Save(context.Background(), opaqueImage(8, 8))
	require.NoError(t, err)

	reopened, err := prefs.Open(filepath.Join(dir, "prefs.toml"))
	require.NoError(t, err)
	p = NewPersistence(Fixed{Path: filepath.Join(dir, "texture.png")}, reopened)

	last, ok := p.LastSavedRef()
	assert.True(t, ok)
	assert.Equal(t, ref, last)
}
