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

package config_test

import (
	"testing"

	"github.com/carraway/advance/config"
	"github.com/carraway/advance/test"
)

func TestParseDefaultsScaleAndPicksUpPositionalROM(t *testing.T) {
	cfg, err := config.Parse([]string{"game.gba"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cfg.ROM, "game.gba")
	test.ExpectEquality(t, cfg.Scale, 3)
}

func TestParseHonoursFlags(t *testing.T) {
	cfg, err := config.Parse([]string{"-scale", "5", "-bios", "bios.bin", "-log", "game.gba"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, cfg.Scale, 5)
	test.ExpectEquality(t, cfg.BIOS, "bios.bin")
	test.ExpectEquality(t, cfg.LogEcho, true)
	test.ExpectEquality(t, cfg.ROM, "game.gba")
}

func TestParseRejectsZeroScale(t *testing.T) {
	_, err := config.Parse([]string{"-scale", "0"})
	test.ExpectFailure(t, err)
}

func TestParseRejectsTooManyPositionalArguments(t *testing.T) {
	_, err := config.Parse([]string{"a.gba", "b.gba"})
	test.ExpectFailure(t, err)
}
