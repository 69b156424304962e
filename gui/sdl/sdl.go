// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package sdl is the one concrete host front-end: a window holding a
// streaming 240x160 BGR555 texture, fed one completed PPU frame at a time,
// plus a channel of keyboard/quit events. It owns no emulation
// state; everything it knows about the running core is a finished frame
// handed to UpdateFrame.
package sdl

import (
	"encoding/binary"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/carraway/advance/ppu"
)

const (
	windowTitle = "advance"

	screenWidth  = ppu.ScreenWidth
	screenHeight = ppu.ScreenHeight
)

// Event is anything Host.Events() delivers to the caller.
type Event interface{}

// QuitEvent is sent when the window's close button is pressed or Escape is
// pressed.
type QuitEvent struct{}

// KeyEvent is sent on every keyboard transition.
type KeyEvent struct {
	Key  sdl.Keycode
	Down bool
}

// Host is the SDL-backed window and streaming texture sink.
type Host struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	events chan Event

	lineBuf [screenWidth * screenHeight * 2]byte
}

// New creates the window, scaled by the given integer factor, and the
// streaming texture frames are written into. scale must be at least 1.
func New(scale int) (*Host, error) {
	if scale < 1 {
		scale = 1
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: failed to initialise: %w", err)
	}

	h := &Host{events: make(chan Event, 16)}

	var err error
	h.window, err = sdl.CreateWindow(windowTitle,
		int32(sdl.WINDOWPOS_CENTERED), int32(sdl.WINDOWPOS_CENTERED),
		int32(screenWidth*scale), int32(screenHeight*scale),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: failed to create window: %w", err)
	}

	h.renderer, err = sdl.CreateRenderer(h.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("sdl: failed to create renderer: %w", err)
	}

	h.texture, err = h.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_BGR555), int(sdl.TEXTUREACCESS_STREAMING), int32(screenWidth), int32(screenHeight))
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("sdl: failed to create texture: %w", err)
	}

	return h, nil
}

// Events returns the channel QuitEvent and KeyEvent values arrive on. The
// caller must drain it (by calling PumpEvents) or the window will appear to
// hang.
func (h *Host) Events() <-chan Event {
	return h.events
}

// PumpEvents drains the OS event queue and forwards quit/keyboard events to
// the Events channel. It does not block; callers invoke it once per frame.
func (h *Host) PumpEvents() {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			h.send(QuitEvent{})
		case *sdl.KeyboardEvent:
			down := e.State == sdl.PRESSED
			if e.Keysym.Sym == sdl.K_ESCAPE && down {
				h.send(QuitEvent{})
			}
			h.send(KeyEvent{Key: e.Keysym.Sym, Down: down})
		}
	}
}

func (h *Host) send(e Event) {
	select {
	case h.events <- e:
	default:
		// a stalled consumer must not block the host loop; drop the event
	}
}

// UpdateFrame uploads a completed frame (one []uint16 BGR555 row per
// scanline, screenHeight rows of screenWidth pixels) to the texture and
// presents it.
func (h *Host) UpdateFrame(rows [screenHeight][screenWidth]uint16) error {
	for y, row := range rows {
		base := y * screenWidth * 2
		for x, px := range row {
			binary.LittleEndian.PutUint16(h.lineBuf[base+x*2:], px)
		}
	}

	if err := h.texture.Update(nil, h.lineBuf[:], screenWidth*2); err != nil {
		return fmt.Errorf("sdl: failed to update texture: %w", err)
	}
	if err := h.renderer.Clear(); err != nil {
		return fmt.Errorf("sdl: failed to clear renderer: %w", err)
	}
	if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl: failed to copy texture: %w", err)
	}
	h.renderer.Present()
	return nil
}

// Close tears down the renderer, texture and window, and shuts down SDL.
func (h *Host) Close() {
	if h.texture != nil {
		_ = h.texture.Destroy()
	}
	if h.renderer != nil {
		_ = h.renderer.Destroy()
	}
	if h.window != nil {
		_ = h.window.Destroy()
	}
	sdl.Quit()
}
