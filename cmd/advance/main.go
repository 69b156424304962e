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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/carraway/advance/config"
	"github.com/carraway/advance/gui/sdl"
	"github.com/carraway/advance/logger"
	"github.com/carraway/advance/system"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "advance: %s\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "advance: %s\n", err)
		if cfg.LogEcho {
			logger.Write(os.Stderr)
		}
		os.Exit(1)
	}
}

// run loads the requested images, builds the system and host window, and
// pumps frames until the window is closed.
func run(cfg config.Config) error {
	var cart, bios, vram, pal []byte
	var err error

	if cfg.ROM != "" {
		cart, err = os.ReadFile(cfg.ROM)
		if err != nil {
			return fmt.Errorf("loading ROM: %w", err)
		}
	}
	if cfg.BIOS != "" {
		bios, err = os.ReadFile(cfg.BIOS)
		if err != nil {
			return fmt.Errorf("loading BIOS: %w", err)
		}
	}
	if cfg.VRAMDump != "" {
		vram, err = os.ReadFile(cfg.VRAMDump)
		if err != nil {
			return fmt.Errorf("loading VRAM dump: %w", err)
		}
	}
	if cfg.PaletteDump != "" {
		pal, err = os.ReadFile(cfg.PaletteDump)
		if err != nil {
			return fmt.Errorf("loading palette dump: %w", err)
		}
	}

	const resetVector = 0x08000000 // cartridge ROM base

	sys := system.New(bios, cart, 0, cfg.Timing, resetVector)
	if vram != nil {
		sys.LoadVRAM(vram)
	}
	if pal != nil {
		sys.LoadPalette(pal)
	}

	host, err := sdl.New(cfg.Scale)
	if err != nil {
		return fmt.Errorf("starting display: %w", err)
	}
	defer host.Close()

	for {
		host.PumpEvents()

		select {
		case ev := <-host.Events():
			if _, quit := ev.(sdl.QuitEvent); quit {
				return nil
			}
		default:
		}

		if err := sys.RunFrame(host); err != nil {
			return fmt.Errorf("running frame: %w", err)
		}
	}
}
