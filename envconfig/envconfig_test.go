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

package envconfig_test

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/multiconsole/corefab/envconfig"
	"github.com/multiconsole/corefab/test"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := envconfig.New(fs, ".corefab/environment.yaml")

	cfg, dirty, err := store.Load()
	test.Equate(t, err, nil)
	test.Equate(t, dirty, true)
	test.Equate(t, cfg, envconfig.Defaults())
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := envconfig.New(fs, ".corefab/environment.yaml")

	cfg := envconfig.Defaults()
	cfg.Graphics.API = "vulkan"
	cfg.Graphics.VSync = false
	cfg.Audio.Volume = 0.5
	cfg.Hotkeys = map[string][]string{"menu": {"F1"}, "fast-forward": {"F2", "Mode+A"}}

	err := store.Save(cfg)
	test.Equate(t, err, nil)

	got, dirty, err := store.Load()
	test.Equate(t, err, nil)
	test.Equate(t, dirty, false)
	test.Equate(t, got, cfg)
}

func TestLoadMalformedFieldFallsBackToDefaultButKeepsOthers(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := envconfig.New(fs, ".corefab/environment.yaml")

	err := afero.WriteFile(fs, ".corefab/environment.yaml", []byte(
		"graphics:\n  api: vulkan\n  vsync: \"not-a-bool\"\naudio:\n  enabled: true\n  volume: 0.75\n"), 0o644)
	test.Equate(t, err, nil)

	cfg, dirty, err := store.Load()
	test.Equate(t, err, nil)
	test.Equate(t, dirty, true)
	test.Equate(t, cfg.Graphics.API, "vulkan")
	test.Equate(t, cfg.Graphics.VSync, envconfig.Defaults().Graphics.VSync)
	test.Equate(t, cfg.Audio.Volume, 0.75)
}

func TestLoadMalformedFileFallsBackEntirely(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := envconfig.New(fs, ".corefab/environment.yaml")

	err := afero.WriteFile(fs, ".corefab/environment.yaml", []byte("not: [valid: yaml"), 0o644)
	test.Equate(t, err, nil)

	cfg, dirty, err := store.Load()
	test.Equate(t, err, nil)
	test.Equate(t, dirty, true)
	test.Equate(t, cfg, envconfig.Defaults())
}

func TestOverridesStackIsLastInFirstOut(t *testing.T) {
	o := envconfig.NewOverrides()
	test.Equate(t, o.Pop(), "")

	o.Push("foo::bar")
	test.Equate(t, o.Pop(), "foo::bar")

	o.Push("   foo:: bar ")
	test.Equate(t, o.Pop(), "foo::bar")

	o.Push("foo::bar; baz::qux")
	test.Equate(t, o.Pop(), "baz::qux; foo::bar")

	o.Push("foo_bar")
	test.Equate(t, o.Pop(), "")

	o.Push("foo_bar;baz::qux")
	test.Equate(t, o.Pop(), "baz::qux")
}

func TestOverridesGetReadsTopGroupOnly(t *testing.T) {
	o := envconfig.NewOverrides()
	o.Push("foo::bar")
	o.Push("baz::qux")

	v, ok := o.Get("baz")
	test.Equate(t, ok, true)
	test.Equate(t, v, "qux")

	_, ok = o.Get("foo")
	test.Equate(t, ok, false)

	test.Equate(t, o.Pop(), "baz::qux")

	v, ok = o.Get("foo")
	test.Equate(t, ok, true)
	test.Equate(t, v, "bar")
}
