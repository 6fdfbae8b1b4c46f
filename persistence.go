package uvpaint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/uvpaint/uvpaint/prefs"
	"github.com/uvpaint/uvpaint/utils"
)

// Ref is the location of a saved texture, a file path or an URL.
type Ref string

// PrefsKey is the prefs entry holding the last saved Ref.
const PrefsKey = "SavedTexture"

var (
	// ErrEncode is returned when the codec produced no data.
	ErrEncode = errors.New("texture encoding produced no data")
	// ErrUserCancelled is returned when the destination choice was aborted.
	ErrUserCancelled = errors.New("texture save cancelled by the user")
)

// LoadError reports a failure to fetch or decode a saved texture.
type LoadError struct {
	Ref Ref
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load texture %q: %v", string(e.Ref), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Persistence encodes, writes and reloads canvas textures,
// remembering the last saved one in the prefs store.
type Persistence struct {
	Codec       Codec
	Destination DestinationProvider
	Store       prefs.Store
	Fetcher     utils.Fetcher
}

// NewPersistence returns a PNG persistence writing to dst.
func NewPersistence(dst DestinationProvider, store prefs.Store) *Persistence {
	return &Persistence{
		Codec:       PNG{},
		Destination: dst,
		Store:       store,
		Fetcher:     utils.NewHTTPFetcher(),
	}
}

// Save encodes img without its alpha channel and writes it to the chosen destination.
// On success the returned Ref is also stored as the last saved texture.
func (p *Persistence) Save(ctx context.Context, img *image.NRGBA) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	codec := p.Codec
	if codec == nil {
		codec = PNG{}
	}
	data, err := codec.Encode(toRGB(img))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if len(data) == 0 {
		return "", ErrEncode
	}
	if p.Destination == nil {
		return "", errors.New("no texture destination configured")
	}
	path, err := p.Destination.Destination(codec.Ext())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("could not write the texture: %w", err)
	}

	ref := Ref(path)
	if p.Store != nil {
		if err := p.Store.SetString(PrefsKey, string(ref)); err != nil {
			Logger().Warn("could not remember the saved texture", "ref", ref, "err", err)
		}
	}
	return ref, nil
}

// Load fetches and decodes the texture at ref.
// Every failure, including empty content, is returned as a *LoadError.
func (p *Persistence) Load(ctx context.Context, ref Ref) (*image.NRGBA, error) {
	fail := func(err error) (*image.NRGBA, error) {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	if ref == "" {
		return fail(errors.New("empty reference"))
	}

	uri := string(ref)
	if !utils.IsValidUrl(uri) {
		u, err := utils.FileURL(uri)
		if err != nil {
			return fail(err)
		}
		uri = u
	}

	fetcher := p.Fetcher
	if fetcher == nil {
		fetcher = utils.NewHTTPFetcher()
	}
	data, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return fail(err)
	}
	if len(data) == 0 {
		return fail(errors.New("empty content"))
	}
	if _, err := utils.DetectContentType(data); err != nil {
		return fail(err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("could not decode the texture: %w", err))
	}
	return imgToNRGBA(img, false), nil
}

// LastSavedRef returns the last saved texture, if any.
func (p *Persistence) LastSavedRef() (Ref, bool) {
	if p.Store == nil {
		return "", false
	}
	ref := p.Store.GetString(PrefsKey)
	return Ref(ref), ref != ""
}
