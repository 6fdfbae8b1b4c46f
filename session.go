package uvpaint

import (
	"context"
	"errors"
	"image"

	"github.com/uvpaint/uvpaint/scene"
	"github.com/uvpaint/uvpaint/utils"
)

// Pointer is the state of the primary pointer during a frame.
// Pos is in screen pixels, with the origin at the bottom-left corner.
type Pointer struct {
	Pos  scene.Vec2
	Down bool
}

// Frame carries the inputs sampled for a single tick.
type Frame struct {
	Pointer Pointer
	Color   Color
}

// Cursor is the brush preview drawn over the painted surface.
type Cursor struct {
	Visible bool
	Pos     scene.Vec3 // canvas local position
	Sprite  image.Image
	Scale   float64
}

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Canvas CanvasConfig
	// Base is the clean canvas image restored by ResetPainting. A white canvas is used when nil.
	Base  image.Image
	Brush Brush
	// Blend is an optional imop blend mode mixing the stamps with the canvas.
	Blend string
	// Op is the imop composition operator of the stamps, source-over when empty.
	Op          string
	Raycaster   Raycaster
	Persistence *Persistence

	// OnSave and OnLoad are called on the ticking goroutine when a save or a load finishes.
	OnSave func(Ref, error)
	OnLoad func(Ref, error)
}

type saveState int

const (
	saveIdle saveState = iota
	saveCapturing
	saveEncoding
)

// Session is the painting orchestrator. It is driven by Tick, called once per frame,
// and is not safe for concurrent use: every method must be called from the ticking goroutine.
// Saving and loading run in the background; their results are applied by Tick or Settle.
type Session struct {
	cfg       SessionConfig
	projector Projector
	acc       *Accumulator
	canvas    *Compositor
	persist   *Persistence
	brush     Brush
	clean     *image.NRGBA

	mode  BrushMode
	color Color
	size  float64

	tick        uint64
	state       saveState
	auto        bool
	captureTick uint64
	cursor      Cursor

	ctx         context.Context
	cancel      context.CancelFunc
	done        chan func()
	inflight    int
	pendingLoad func()
}

// NewSession creates a painting session over the configured canvas.
func NewSession(cfg SessionConfig) (*Session, error) {
	// Without a resolution the canvas takes the size of the base image.
	if (cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0) && cfg.Base == nil {
		def := DefaultCanvasConfig()
		cfg.Canvas.Width, cfg.Canvas.Height = def.Width, def.Height
	}
	brush := DefaultBrush()
	if cfg.Brush.PixelsPerUnit > 0 && cfg.Canvas.PixelsPerUnit <= 0 {
		cfg.Canvas.PixelsPerUnit = cfg.Brush.PixelsPerUnit
	}
	if cfg.Canvas.PixelsPerUnit <= 0 {
		cfg.Canvas.PixelsPerUnit = brush.PixelsPerUnit
	}

	acc := NewAccumulator()
	canvas := NewCompositor(cfg.Canvas, cfg.Base, acc)
	if err := canvas.SetBlend(cfg.Blend); err != nil {
		return nil, err
	}
	if err := canvas.SetOp(cfg.Op); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:     cfg,
		acc:     acc,
		canvas:  canvas,
		persist: cfg.Persistence,
		brush:   brush,
		clean:   canvas.Base(),
		mode:    Paint,
		color:   White,
		size:    1,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan func()),
	}
	s.projector = Projector{
		Raycaster:  cfg.Raycaster,
		HalfExtent: float32(canvas.cfg.HalfExtent),
	}
	s.SetBrush(cfg.Brush)
	return s, nil
}

// Tick runs one interaction frame: it applies the finished background tasks,
// advances a pending save, paints under the pointer and refreshes the cursor.
func (s *Session) Tick(f Frame) {
	s.tick++
	s.drain()
	s.advanceSave(false)

	s.color = f.Color
	if f.Pointer.Down {
		s.paint(f.Pointer.Pos)
	}
	s.updateCursor(f.Pointer.Pos)
}

func (s *Session) paint(screen scene.Vec2) {
	if s.Saving() {
		return
	}
	pos, ok := s.projector.Project(screen)
	if !ok {
		return
	}
	// A failed automatic save leaves the stamps in place; bake them without saving to keep the cap.
	if s.acc.Count() >= MaxBrushCount {
		s.canvas.Flatten()
	}
	s.acc.Add(s.newStamp(pos))

	if s.acc.Count() >= MaxBrushCount {
		s.startSave(true)
	}
}

func (s *Session) newStamp(pos scene.Vec3) Stamp {
	st := Stamp{
		Pos:    pos,
		Scale:  s.size,
		Kind:   KindBrush,
		Sprite: s.brush.Sprite,
	}
	switch s.mode {
	case Paint:
		st.Color = s.color
	case Erase:
		st.Color = White
	case Decal:
		st.Kind = KindDecal
		st.Sprite = s.brush.Decal
		st.Color = White
	}
	st.Color = st.Color.WithAlpha(StampAlpha(s.size))
	return st
}

func (s *Session) updateCursor(screen scene.Vec2) {
	s.cursor.Visible = false
	if s.Saving() {
		return
	}
	pos, ok := s.projector.Project(screen)
	if !ok {
		return
	}
	s.cursor.Visible = true
	s.cursor.Pos = pos
}

// SetBrushMode selects what the following paint actions leave on the canvas.
func (s *Session) SetBrushMode(mode BrushMode) error {
	if !mode.Valid() {
		_, err := ParseBrushMode(int(mode))
		return err
	}
	s.mode = mode
	s.refreshCursorSprite()
	return nil
}

// SetBrushSize changes the stamp scale. The stamp alpha follows the size.
func (s *Session) SetBrushSize(size float64) {
	s.size = utils.Max(size, 0)
	s.cursor.Scale = s.size
}

// SetBrush replaces the brush assets. Zero fields keep the current asset.
func (s *Session) SetBrush(b Brush) {
	if b.Sprite != nil || b.Decal != nil {
		s.canvas.DropSprites()
	}
	if b.Sprite != nil {
		s.brush.Sprite = b.Sprite
	}
	if b.Cursor != nil {
		s.brush.Cursor = b.Cursor
	}
	if b.Decal != nil {
		s.brush.Decal = b.Decal
	}
	if b.DecalCursor != nil {
		s.brush.DecalCursor = b.DecalCursor
	}
	if b.PixelsPerUnit > 0 {
		s.brush.PixelsPerUnit = b.PixelsPerUnit
	}
	s.cursor.Scale = s.size
	s.refreshCursorSprite()
}

func (s *Session) refreshCursorSprite() {
	if s.mode == Decal {
		s.cursor.Sprite = s.brush.DecalCursor
		return
	}
	s.cursor.Sprite = s.brush.Cursor
}

// ResetPainting drops every stamp and restores the clean canvas image.
// The last saved texture reference is left untouched.
func (s *Session) ResetPainting() {
	s.acc.Clear()
	s.canvas.SetBase(s.clean)
}

// SaveTexture starts a save cycle. The canvas is captured on the next tick,
// once the cursor is hidden. It reports false when a save is already running.
func (s *Session) SaveTexture() bool {
	return s.startSave(false)
}

func (s *Session) startSave(auto bool) bool {
	if s.Saving() {
		return false
	}
	s.state = saveCapturing
	s.auto = auto
	s.captureTick = s.tick
	s.cursor.Visible = false
	return true
}

// advanceSave captures the canvas and hands it to the encoder,
// on the first tick after the save began or right away when forced.
func (s *Session) advanceSave(force bool) {
	if s.state != saveCapturing || (!force && s.tick <= s.captureTick) {
		return
	}
	s.state = saveEncoding
	img := s.canvas.Composite()

	persist := s.persist
	s.spawn(func(ctx context.Context) func() {
		if persist == nil {
			return func() { s.saveComplete("", nil, errors.New("no texture persistence configured")) }
		}
		ref, err := persist.Save(ctx, img)
		return func() { s.saveComplete(ref, img, err) }
	})
}

func (s *Session) saveComplete(ref Ref, img *image.NRGBA, err error) {
	log := Logger().With("auto", s.auto)
	switch {
	case err == nil:
		log.Info("texture saved", "ref", ref)
		s.acc.Clear()
		// The base follows the written texture, which carries no alpha.
		s.canvas.SetBase(toRGB(img))
		if s.pendingLoad != nil {
			log.Info("discarding a texture reload completed during the save")
			s.pendingLoad = nil
		}
	case errors.Is(err, ErrUserCancelled):
		log.Info("save cancelled by user")
	default:
		log.Error("could not save texture", "err", err)
	}

	s.state = saveIdle
	s.auto = false
	if load := s.pendingLoad; load != nil {
		s.pendingLoad = nil
		load()
	}
	if s.cfg.OnSave != nil {
		s.cfg.OnSave(ref, err)
	}
}

// LoadLastSaved reloads the last saved texture in the background.
// It reports false when no texture was ever saved.
func (s *Session) LoadLastSaved() bool {
	if s.persist == nil {
		return false
	}
	ref, ok := s.persist.LastSavedRef()
	if !ok {
		return false
	}
	persist := s.persist
	s.spawn(func(ctx context.Context) func() {
		img, err := persist.Load(ctx, ref)
		return func() { s.loadComplete(ref, img, err) }
	})
	return true
}

func (s *Session) loadComplete(ref Ref, img *image.NRGBA, err error) {
	apply := func() {
		if err != nil {
			Logger().Warn("failed to load texture", "ref", ref, "err", err)
		} else {
			Logger().Info("texture loaded", "ref", ref)
			s.canvas.SetBase(img)
		}
		if s.cfg.OnLoad != nil {
			s.cfg.OnLoad(ref, err)
		}
	}
	if s.Saving() {
		s.pendingLoad = apply
		return
	}
	apply()
}

// spawn runs task in the background. The continuation it returns
// is applied on the ticking goroutine.
func (s *Session) spawn(task func(ctx context.Context) func()) {
	s.inflight++
	go func() {
		fn := task(s.ctx)
		select {
		case s.done <- fn:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) drain() {
	for s.inflight > 0 {
		select {
		case fn := <-s.done:
			s.inflight--
			fn()
		default:
			return
		}
	}
}

// Settle waits for the pending save and load tasks and applies their results.
// A save still waiting for its capture tick is captured immediately.
func (s *Session) Settle(ctx context.Context) error {
	for {
		s.advanceSave(true)
		if s.inflight == 0 {
			return nil
		}
		select {
		case fn := <-s.done:
			s.inflight--
			fn()
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}

// Close stops the background tasks. Results not yet applied are discarded.
func (s *Session) Close() {
	s.cancel()
}

// Saving reports whether a save cycle is running.
func (s *Session) Saving() bool { return s.state != saveIdle }

// Count returns the number of live stamps.
func (s *Session) Count() int { return s.acc.Count() }

// Cursor returns the current brush preview.
func (s *Session) Cursor() Cursor { return s.cursor }

// Canvas returns the session compositor.
func (s *Session) Canvas() *Compositor { return s.canvas }

// Mode returns the active brush mode.
func (s *Session) Mode() BrushMode { return s.mode }

// Size returns the brush size.
func (s *Session) Size() float64 { return s.size }

// Color returns the brush color sampled on the last tick.
func (s *Session) Color() Color { return s.color }
