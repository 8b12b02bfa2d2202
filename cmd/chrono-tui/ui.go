package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/events"
)

const (
	cellWidth      = 4
	boardOriginX   = 2
	boardOriginY   = 2
	noticeDuration = 3 * time.Second
	errorBlinkMs   = 500
)

var typeGlyph = map[fragment.Type]rune{
	fragment.TypePast:     'P',
	fragment.TypePresent:  'N',
	fragment.TypeFuture:   'F',
	fragment.TypeParadox:  'X',
	fragment.TypeVoid:     'V',
	fragment.TypeConstant: 'C',
}

var rotationGlyph = map[fragment.Rotation]rune{
	fragment.Rotation0:   '↑',
	fragment.Rotation90:  '→',
	fragment.Rotation180: '↓',
	fragment.Rotation270: '←',
}

// UI renders one session and turns key presses into session actions.
type UI struct {
	screen  tcell.Screen
	engine  *engine.Engine
	session *engine.Session
	chime   func()

	cursorX, cursorY int
	selected         int // fragment ID, -1 when nothing is selected

	notice      string
	noticeUntil time.Time
	errText     string
	errTime     time.Time

	solved chan engine.PatternSolved
}

// NewUI binds a screen to an engine. chime may be nil.
func NewUI(screen tcell.Screen, eng *engine.Engine, chime func()) *UI {
	ui := &UI{
		screen:   screen,
		engine:   eng,
		session:  eng.Session(),
		chime:    chime,
		selected: -1,
		solved:   make(chan engine.PatternSolved, 16),
	}
	eng.GetEventLog().Subscribe(func(e events.GameEvent) {
		if e.Type != events.EventTypePatternSolved {
			return
		}
		if p, ok := e.Payload.(engine.PatternSolved); ok {
			select {
			case ui.solved <- p:
			default:
			}
		}
	})
	return ui
}

// Run drives input and redraw until the player quits.
func (ui *UI) Run() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := ui.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !ui.handleInput(ev) {
				return
			}
			ui.draw()
		case <-ticker.C:
			ui.draw()
		}
	}
}

func (ui *UI) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			ui.moveCursor(0, -1)
		case tcell.KeyDown:
			ui.moveCursor(0, 1)
		case tcell.KeyLeft:
			ui.moveCursor(-1, 0)
		case tcell.KeyRight:
			ui.moveCursor(1, 0)
		case tcell.KeyEnter:
			ui.selectOrMove()
		case tcell.KeyRune:
			return ui.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		ui.screen.Sync()
	}
	return true
}

func (ui *UI) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'h':
		ui.moveCursor(-1, 0)
	case 'j':
		ui.moveCursor(0, 1)
	case 'k':
		ui.moveCursor(0, -1)
	case 'l':
		ui.moveCursor(1, 0)
	case ' ':
		ui.selectOrMove()
	case 'r':
		ui.rotate(fragment.QuarterTurn)
	case 'R':
		ui.rotate(-fragment.QuarterTurn)
	case 'p':
		if ui.session.Snapshot().Playing {
			ui.session.Pause()
		} else {
			ui.session.Start()
		}
	case 'n':
		_, err := ui.session.AdvanceLevel()
		ui.report(err)
	case 'x':
		_, err := ui.session.SkipPuzzle()
		ui.report(err)
	case 'c':
		ui.session.Reset()
		ui.selected = -1
	}
	return true
}

func (ui *UI) moveCursor(dx, dy int) {
	board := ui.session.Snapshot().Board
	ui.cursorX = min(max(ui.cursorX+dx, 0), board.Width-1)
	ui.cursorY = min(max(ui.cursorY+dy, 0), board.Height-1)
}

// selectOrMove picks the fragment under the cursor, or moves the selected
// fragment to the cursor when the cell holds none.
func (ui *UI) selectOrMove() {
	if id, ok := ui.fragmentAtCursor(); ok && id != ui.selected {
		ui.selected = id
		return
	}
	if ui.selected < 0 {
		return
	}
	_, err := ui.session.Move(ui.selected, ui.cursorX, ui.cursorY)
	ui.report(err)
	if err == nil {
		ui.selected = -1
	}
}

func (ui *UI) rotate(delta int) {
	id := ui.selected
	if id < 0 {
		var ok bool
		if id, ok = ui.fragmentAtCursor(); !ok {
			return
		}
	}
	_, err := ui.session.Rotate(id, delta)
	ui.report(err)
}

// fragmentAtCursor prefers an unsolved fragment when a solved one shares the cell.
func (ui *UI) fragmentAtCursor() (int, bool) {
	at := fragment.Position{X: ui.cursorX, Y: ui.cursorY}
	found, ok := -1, false
	for _, f := range ui.session.Snapshot().Fragments {
		if f.Position != at {
			continue
		}
		if !f.Solved {
			return f.ID, true
		}
		found, ok = f.ID, true
	}
	return found, ok
}

func (ui *UI) report(err error) {
	if err == nil {
		return
	}
	var ae *engine.ActionError
	if errors.As(err, &ae) {
		ui.errText = ae.Err.Error()
	} else {
		ui.errText = err.Error()
	}
	ui.errTime = time.Now()
}

func (ui *UI) drainSolved(now time.Time) {
	for {
		select {
		case p := <-ui.solved:
			ui.notice = fmt.Sprintf("%s! +%d", p.Name, p.Points)
			ui.noticeUntil = now.Add(noticeDuration)
			if ui.chime != nil {
				ui.chime()
			}
		default:
			return
		}
	}
}

func (ui *UI) draw() {
	now := time.Now()
	ui.drainSolved(now)
	st := ui.session.Snapshot()

	ui.screen.Clear()
	title := tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	ui.text(boardOriginX, 0, "ECHOES OF ETERNITY", title)

	byCell := make(map[fragment.Position]fragment.Fragment, len(st.Fragments))
	for _, f := range st.Fragments {
		if prev, taken := byCell[f.Position]; !taken || prev.Solved {
			byCell[f.Position] = f
		}
	}

	for y := 0; y < st.Board.Height; y++ {
		for x := 0; x < st.Board.Width; x++ {
			sx := boardOriginX + x*cellWidth
			sy := boardOriginY + y
			style := tcell.StyleDefault.Foreground(tcell.ColorGray)
			glyph := []rune{' ', '·', ' '}

			if f, ok := byCell[fragment.Position{X: x, Y: y}]; ok {
				style = tcell.StyleDefault.Foreground(tcell.GetColor(string(f.Color)))
				if f.Solved {
					style = style.Dim(true).Underline(true)
				}
				glyph = []rune{typeGlyph[f.Type], rotationGlyph[f.Rotation], ' '}
				if f.ID == ui.selected {
					style = style.Bold(true).Reverse(true)
				}
			}
			if x == ui.cursorX && y == ui.cursorY {
				cursor := tcell.ColorWhite
				if now.Sub(ui.errTime).Milliseconds() < errorBlinkMs {
					cursor = tcell.ColorRed
				}
				style = style.Background(cursor).Foreground(tcell.ColorBlack)
			}
			for i, r := range glyph {
				ui.screen.SetContent(sx+i, sy, r, nil, style)
			}
		}
	}

	row := boardOriginY + st.Board.Height + 1
	status := "PAUSED"
	if st.Playing {
		status = "PLAYING"
	}
	plain := tcell.StyleDefault
	ui.text(boardOriginX, row, fmt.Sprintf("Energy %6.1f / %.0f  (+%.1f/s)", st.Energy, st.Capacity, st.RegenRate), plain)
	ui.text(boardOriginX, row+1, fmt.Sprintf("Level %d  Score %d  Puzzles %d  %s", st.Level, st.Score, st.PuzzlesSolved, status), plain)

	if now.Before(ui.noticeUntil) {
		ui.text(boardOriginX, row+3, ui.notice, tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))
	}
	if ui.errText != "" && now.Sub(ui.errTime) < noticeDuration {
		ui.text(boardOriginX, row+4, ui.errText, tcell.StyleDefault.Foreground(tcell.ColorRed))
	}

	help := tcell.StyleDefault.Foreground(tcell.ColorGray)
	ui.text(boardOriginX, row+6, "arrows/hjkl move  space select/place  r/R rotate", help)
	ui.text(boardOriginX, row+7, "p start/pause  n next level  x skip  c reset  q quit", help)

	ui.screen.Show()
}

func (ui *UI) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		ui.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
