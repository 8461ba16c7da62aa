// Package terminal is an input source reading keyboard and mouse events from
// a terminal through tcell.
//
// Terminals report key presses but never releases. A release is synthesized
// once a key has gone quiet for ReleaseAfter; auto-repeat presses arriving
// before then are forwarded as repeats and keep the key held.
//
// Mouse positions are terminal cells. They are scaled onto the mask
// rectangle so that the terminal stands in for the mirrored screen.
package terminal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// DefaultReleaseAfter is the quiet period after which a key counts as
// released. It is longer than the usual auto-repeat delay.
const DefaultReleaseAfter = 550 * time.Millisecond

// Source feeds terminal input to a Sink.
type Source struct {
	screen tcell.Screen
	tr     *translator
	log    zerolog.Logger
	quit   tcell.Key

	mu      sync.Mutex
	cursor  coord.Point
	visible bool
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the source logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Source) {
		s.log = logger
	}
}

// WithReleaseAfter sets the quiet period of synthesized releases.
func WithReleaseAfter(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.tr.releaseAfter = d
		}
	}
}

// WithQuitKey sets the key that ends Run. The default is Ctrl+C.
func WithQuitKey(k tcell.Key) Option {
	return func(s *Source) {
		s.quit = k
	}
}

// New creates a source on screen. The screen is initialized by Run.
func New(screen tcell.Screen, sink host.Sink, mask coord.Rect, opts ...Option) *Source {
	s := &Source{
		screen:  screen,
		tr:      newTranslator(sink, mask),
		log:     zerolog.Nop(),
		quit:    tcell.KeyCtrlC,
		visible: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "terminal").Logger()
	return s
}

// Open creates a source on the controlling terminal.
func Open(sink host.Sink, mask coord.Rect, opts ...Option) (*Source, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen, sink, mask, opts...), nil
}

// Run initializes the screen and forwards events until ctx is done or the
// quit key is pressed. Held keys are released before it returns.
func (s *Source) Run(ctx context.Context) error {
	if err := s.screen.Init(); err != nil {
		return err
	}
	defer s.screen.Fini()
	s.screen.EnableMouse()
	s.screen.HideCursor()
	cols, rows := s.screen.Size()
	s.tr.resize(cols, rows)
	defer s.tr.releaseAll()

	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
	})
	defer stop()

	s.log.Info().Int("cols", cols).Int("rows", rows).Msg("terminal input started")
	for {
		ev := s.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		case *tcell.EventKey:
			if e.Key() == s.quit {
				s.log.Info().Msg("quit key pressed")
				return nil
			}
			s.tr.key(e)
		case *tcell.EventMouse:
			s.tr.mouse(e)
		case *tcell.EventResize:
			cols, rows := e.Size()
			s.tr.resize(cols, rows)
			s.screen.Sync()
		case *tcell.EventError:
			s.log.Warn().Err(e).Msg("terminal error")
		}
	}
}

// SetCursorPosition implements host.Pointer. A terminal cannot move the
// mouse, so reported positions are shifted to continue from p and only the
// drawn cursor follows.
func (s *Source) SetCursorPosition(p coord.Point) {
	s.tr.warp(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = p
	s.drawCursor()
}

// SetCursorVisible implements host.Pointer. Showing the cursor drops the
// shift left by SetCursorPosition.
func (s *Source) SetCursorVisible(visible bool) {
	if visible {
		s.tr.unwarp()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	s.drawCursor()
}

func (s *Source) drawCursor() {
	if !s.visible {
		s.screen.HideCursor()
		s.screen.Show()
		return
	}
	col, row := s.tr.cell(s.cursor)
	s.screen.ShowCursor(col, row)
	s.screen.Show()
}

// translator turns tcell events into engine events.
type translator struct {
	sink         host.Sink
	mask         coord.Rect
	releaseAfter time.Duration
	now          func() time.Time

	mu      sync.Mutex
	cols    int
	rows    int
	buttons tcell.ButtonMask
	held    map[key.ID]*time.Timer

	// physical is the last position the terminal reported; offset shifts
	// it since the last warp.
	physical coord.Point
	offset   coord.Point
}

func newTranslator(sink host.Sink, mask coord.Rect) *translator {
	return &translator{
		sink:         sink,
		mask:         mask,
		releaseAfter: DefaultReleaseAfter,
		now:          time.Now,
		cols:         1,
		rows:         1,
		held:         make(map[key.ID]*time.Timer),
		physical:     mask.Center(),
	}
}

func (t *translator) resize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols = max(cols, 1)
	t.rows = max(rows, 1)
}

// position maps the center of a cell onto the mask.
func (t *translator) position(col, row int) mouse.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return mouse.Position{
		X: t.mask.Left + (2*col+1)*t.mask.W/(2*t.cols),
		Y: t.mask.Top + (2*row+1)*t.mask.H/(2*t.rows),
	}
}

// report maps a cell like position, shifted by the warp offset and clamped
// to the mask.
func (t *translator) report(col, row int) mouse.Position {
	phys := t.position(col, row)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.physical = coord.Point{X: phys.X, Y: phys.Y}
	return mouse.Position{
		X: max(t.mask.Left, min(phys.X+t.offset.X, t.mask.Left+t.mask.W-1)),
		Y: max(t.mask.Top, min(phys.Y+t.offset.Y, t.mask.Top+t.mask.H-1)),
	}
}

// warp makes the current physical position report as p.
func (t *translator) warp(p coord.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = p.Sub(t.physical)
}

func (t *translator) unwarp() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = coord.Point{}
}

// cell is the inverse of position.
func (t *translator) cell(p coord.Point) (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mask.W <= 0 || t.mask.H <= 0 {
		return 0, 0
	}
	return (p.X - t.mask.Left) * t.cols / t.mask.W, (p.Y - t.mask.Top) * t.rows / t.mask.H
}

func (t *translator) key(e *tcell.EventKey) {
	id, mods, ok := convertKey(e)
	if !ok {
		return
	}
	ev := key.Event{Code: id, Action: key.ActionDown, Modifiers: mods, Timestamp: t.now()}

	t.mu.Lock()
	if timer, held := t.held[id]; held {
		timer.Reset(t.releaseAfter)
		ev.Repeat = true
	} else {
		t.held[id] = time.AfterFunc(t.releaseAfter, func() { t.release(id, mods) })
	}
	t.mu.Unlock()

	t.sink.HandleKeyEvent(ev)
}

func (t *translator) release(id key.ID, mods key.Modifier) {
	t.mu.Lock()
	if _, held := t.held[id]; !held {
		t.mu.Unlock()
		return
	}
	delete(t.held, id)
	t.mu.Unlock()

	t.sink.HandleKeyEvent(key.Event{Code: id, Action: key.ActionUp, Modifiers: mods, Timestamp: t.now()})
}

// releaseAll releases every held key at once.
func (t *translator) releaseAll() {
	t.mu.Lock()
	ids := make([]key.ID, 0, len(t.held))
	for id, timer := range t.held {
		timer.Stop()
		ids = append(ids, id)
	}
	t.mu.Unlock()
	for _, id := range ids {
		t.release(id, key.ModNone)
	}
}

// buttonMap pairs tcell buttons with engine buttons.
var buttonMap = []struct {
	mask   tcell.ButtonMask
	button mouse.Button
}{
	{tcell.ButtonPrimary, mouse.ButtonLeft},
	{tcell.ButtonMiddle, mouse.ButtonMiddle},
	{tcell.ButtonSecondary, mouse.ButtonRight},
	{tcell.Button4, mouse.ButtonBack},
	{tcell.Button5, mouse.ButtonForward},
}

// mouse diffs the reported button state against the previous one. Every
// event also carries the pointer position.
func (t *translator) mouse(e *tcell.EventMouse) {
	col, row := e.Position()
	pos := t.report(col, row)
	mods := convertMod(e.Modifiers())
	now := t.now()
	btns := e.Buttons()

	t.mu.Lock()
	prev := t.buttons
	t.buttons = btns &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	t.mu.Unlock()

	emit := func(action mouse.Action, b mouse.Button) {
		t.sink.HandleMouseEvent(mouse.Event{Position: pos, Button: b, Modifiers: mods, Action: action, Timestamp: now})
	}

	emit(mouse.ActionMove, mouse.ButtonNone)
	for _, m := range buttonMap {
		switch {
		case btns&m.mask != 0 && prev&m.mask == 0:
			emit(mouse.ActionPress, m.button)
		case btns&m.mask == 0 && prev&m.mask != 0:
			emit(mouse.ActionRelease, m.button)
		}
	}
	if btns&tcell.WheelUp != 0 {
		emit(mouse.ActionPress, mouse.ButtonScrollUp)
	}
	if btns&tcell.WheelDown != 0 {
		emit(mouse.ActionPress, mouse.ButtonScrollDown)
	}
}

func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}

var namedKeys = map[tcell.Key]key.ID{
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyEscape:     "Escape",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

var punctuation = map[rune]key.ID{
	' ': "Space", '-': "Minus", '_': "Minus", '=': "Equal", '+': "Equal",
	'[': "BracketLeft", '{': "BracketLeft", ']': "BracketRight", '}': "BracketRight",
	';': "Semicolon", ':': "Semicolon", '\'': "Quote", '"': "Quote",
	',': "Comma", '<': "Comma", '.': "Period", '>': "Period",
	'/': "Slash", '?': "Slash", '\\': "Backslash", '|': "Backslash",
	'`': "Backquote", '~': "Backquote",
}

// shifted are the punctuation characters a US layout types with Shift
// held; shiftedDigits are the shifted digits 0 to 9.
const (
	shifted       = `_+{}:"<>?|~`
	shiftedDigits = ")!@#$%^&*("
)

// convertKey maps a tcell key to a physical key id on a US layout.
func convertKey(e *tcell.EventKey) (key.ID, key.Modifier, bool) {
	mods := convertMod(e.Modifiers())
	k := e.Key()

	if id, ok := namedKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= key.ModShift
		}
		return id, mods, true
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return key.ID("Key" + string(rune('A'+k-tcell.KeyCtrlA))), mods | key.ModCtrl, true
	}
	if k != tcell.KeyRune {
		return key.None, mods, false
	}

	r := e.Rune()
	switch {
	case r >= 'a' && r <= 'z':
		return key.ID("Key" + string(r-'a'+'A')), mods, true
	case r >= 'A' && r <= 'Z':
		return key.ID("Key" + string(r)), mods | key.ModShift, true
	case r >= '0' && r <= '9':
		return key.ID("Digit" + string(r)), mods, true
	}
	if i := strings.IndexRune(shiftedDigits, r); i >= 0 {
		return key.ID("Digit" + string(rune('0'+i))), mods | key.ModShift, true
	}
	if id, ok := punctuation[r]; ok {
		if strings.ContainsRune(shifted, r) {
			mods |= key.ModShift
		}
		return id, mods, true
	}
	return key.None, mods, false
}
