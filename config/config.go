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

// Package config collects the handful of settings the command line front
// end needs before it can build a running system: where the ROM and
// optional memory dump files live, how big the display window should be,
// and the cartridge wait-state timings. There is no file format here, no
// registry key, nothing persisted between runs -- just the flag.FlagSet
// parse result, the same way the teacher's own settings are hand-rolled
// rather than built on a config library.
package config

import (
	"flag"
	"fmt"

	"github.com/carraway/advance/memory"
)

// Config is the fully parsed command line configuration for one run.
type Config struct {
	// ROM is the path to the cartridge ROM image. If empty, the core runs
	// with no cartridge loaded.
	ROM string

	// BIOS is the path to a BIOS image. If empty, the core runs without
	// one and boots directly into the cartridge.
	BIOS string

	// PaletteDump and VRAMDump, if set, are paths to raw memory dumps
	// loaded directly into palette RAM and VRAM at startup, bypassing
	// any real boot sequence. Useful for driving the PPU in isolation.
	PaletteDump string
	VRAMDump    string

	// Scale is the integer window scale factor passed to the host front
	// end.
	Scale int

	// LogEcho, if true, dumps the retained logger entries to stderr when
	// the run ends with an error. Entries are not echoed as they are
	// recorded.
	LogEcho bool

	// Timing is the cartridge ROM/SRAM wait-state configuration. It has
	// no command line flag yet -- hook left here per the memory unit's
	// own CartTiming contract -- and defaults to GBATEK's WAITCNT reset
	// value.
	Timing memory.CartTiming
}

// Parse builds a Config from args (typically os.Args[1:]). The ROM path,
// if any, is the sole positional argument.
func Parse(args []string) (Config, error) {
	cfg := Config{
		Scale:  3,
		Timing: memory.DefaultCartTiming(),
	}

	flgs := flag.NewFlagSet("advance", flag.ContinueOnError)
	flgs.StringVar(&cfg.BIOS, "bios", "", "path to BIOS image")
	flgs.StringVar(&cfg.PaletteDump, "palette", "", "path to a raw palette RAM dump, loaded at startup")
	flgs.StringVar(&cfg.VRAMDump, "vram", "", "path to a raw VRAM dump, loaded at startup")
	flgs.IntVar(&cfg.Scale, "scale", cfg.Scale, "integer window scale factor")
	flgs.BoolVar(&cfg.LogEcho, "log", false, "dump debugging log to stderr if the run fails")

	if err := flgs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := flgs.Args()
	if len(rest) > 1 {
		return Config{}, fmt.Errorf("config: too many arguments")
	}
	if len(rest) == 1 {
		cfg.ROM = rest[0]
	}

	if cfg.Scale < 1 {
		return Config{}, fmt.Errorf("config: scale must be at least 1")
	}

	return cfg, nil
}
