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

// Package envconfig implements the environment file (§6): a single textual,
// key-value settings file under the platform data directory holding graphics
// settings, audio settings, hotkey bindings, and the file-browser/database/
// store/save/snapshot directories. It plays the role the teacher's prefs
// package plays for a single Disk of ad-hoc Value fields, widened to one
// structured document and backed by spf13/viper (with afero standing in for
// prefs' bespoke file handling) instead of a hand-rolled "key :: value"
// line format.
package envconfig

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/multiconsole/corefab/curated"
	"github.com/multiconsole/corefab/logger"
	"github.com/multiconsole/corefab/resources"
)

// GraphicsSettings is the environment file's "graphics" section.
type GraphicsSettings struct {
	API   string `mapstructure:"api"`
	VSync bool   `mapstructure:"vsync"`
}

// AudioSettings is the environment file's "audio" section.
type AudioSettings struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// Directories is the environment file's directory section. Hotkeys are
// stored separately (see Config.Hotkeys) because their default table is a
// domain concern owned by the hotkeys package, not this one.
type Directories struct {
	FileBrowserHome string `mapstructure:"file_browser_home"`
	DatabaseDir     string `mapstructure:"database_dir"`
	StoreDir        string `mapstructure:"store_dir"`
	SaveDir         string `mapstructure:"save_dir"`
	SnapshotDir     string `mapstructure:"snapshot_dir"`
}

// Config is the complete, in-memory environment file (§6).
type Config struct {
	Graphics    GraphicsSettings
	Audio       AudioSettings
	Hotkeys     map[string][]string
	Directories Directories
}

// Defaults returns the built-in environment file defaults. Every field
// Load cannot recover from disk falls back to the matching field here.
func Defaults() Config {
	home, _ := resources.JoinPath("roms")
	db, _ := resources.JoinPath("database")
	store, _ := resources.JoinPath("store")
	save, _ := resources.JoinPath("save")
	snap, _ := resources.JoinPath("snapshot")

	return Config{
		Graphics: GraphicsSettings{API: "opengl", VSync: true},
		Audio:    AudioSettings{Enabled: true, Volume: 1.0},
		Hotkeys:  map[string][]string{},
		Directories: Directories{
			FileBrowserHome: home,
			DatabaseDir:     db,
			StoreDir:        store,
			SaveDir:         save,
			SnapshotDir:     snap,
		},
	}
}

// Store reads and writes one environment file at path, on fs.
type Store struct {
	fs   afero.Fs
	path string
}

// New creates a Store for the environment file at path, on fs. Passing
// afero.NewMemMapFs() is the usual choice in tests; production callers pass
// afero.NewOsFs().
func New(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Load reads the environment file, falling back field-by-field to
// Defaults() for anything absent or malformed (§6 "Absent or malformed
// fields fall back to built-in defaults and are rewritten on next save").
// The returned bool reports whether any field fell back to its default, so
// a caller that wants the corrected file persisted immediately can follow
// up with Save.
func (s *Store) Load() (Config, bool, error) {
	def := Defaults()

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return def, false, curated.Errorf("envconfig: %s", err)
	}
	if !exists {
		return def, true, nil
	}

	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		logger.Logf("envconfig", "environment file is malformed, falling back to defaults: %s", err)
		return def, true, nil
	}

	cfg := def
	dirty := false

	cfg.Graphics.API, dirty = mergeString(v, "graphics.api", def.Graphics.API, dirty)
	cfg.Graphics.VSync, dirty = mergeBool(v, "graphics.vsync", def.Graphics.VSync, dirty)
	cfg.Audio.Enabled, dirty = mergeBool(v, "audio.enabled", def.Audio.Enabled, dirty)
	cfg.Audio.Volume, dirty = mergeFloat(v, "audio.volume", def.Audio.Volume, dirty)
	cfg.Directories.FileBrowserHome, dirty = mergeString(v, "directories.file_browser_home", def.Directories.FileBrowserHome, dirty)
	cfg.Directories.DatabaseDir, dirty = mergeString(v, "directories.database_dir", def.Directories.DatabaseDir, dirty)
	cfg.Directories.StoreDir, dirty = mergeString(v, "directories.store_dir", def.Directories.StoreDir, dirty)
	cfg.Directories.SaveDir, dirty = mergeString(v, "directories.save_dir", def.Directories.SaveDir, dirty)
	cfg.Directories.SnapshotDir, dirty = mergeString(v, "directories.snapshot_dir", def.Directories.SnapshotDir, dirty)
	cfg.Hotkeys, dirty = mergeHotkeys(v, "hotkeys", def.Hotkeys, dirty)

	return cfg, dirty, nil
}

// Save writes cfg to the environment file, overwriting whatever was there.
func (s *Store) Save(cfg Config) error {
	if err := s.fs.MkdirAll(path.Dir(s.path), 0o755); err != nil {
		return curated.Errorf("envconfig: %s", err)
	}

	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigType("yaml")

	v.Set("graphics.api", cfg.Graphics.API)
	v.Set("graphics.vsync", cfg.Graphics.VSync)
	v.Set("audio.enabled", cfg.Audio.Enabled)
	v.Set("audio.volume", cfg.Audio.Volume)
	v.Set("directories.file_browser_home", cfg.Directories.FileBrowserHome)
	v.Set("directories.database_dir", cfg.Directories.DatabaseDir)
	v.Set("directories.store_dir", cfg.Directories.StoreDir)
	v.Set("directories.save_dir", cfg.Directories.SaveDir)
	v.Set("directories.snapshot_dir", cfg.Directories.SnapshotDir)
	v.Set("hotkeys", cfg.Hotkeys)

	if err := v.WriteConfigAs(s.path); err != nil {
		return curated.Errorf("envconfig: %s", err)
	}
	return nil
}

func mergeString(v *viper.Viper, key, def string, dirty bool) (string, bool) {
	if !v.IsSet(key) {
		return def, true
	}
	if s, ok := v.Get(key).(string); ok {
		return s, dirty
	}
	return def, true
}

func mergeBool(v *viper.Viper, key string, def bool, dirty bool) (bool, bool) {
	if !v.IsSet(key) {
		return def, true
	}
	if b, ok := v.Get(key).(bool); ok {
		return b, dirty
	}
	return def, true
}

func mergeFloat(v *viper.Viper, key string, def float64, dirty bool) (float64, bool) {
	if !v.IsSet(key) {
		return def, true
	}
	switch n := v.Get(key).(type) {
	case float64:
		return n, dirty
	case int:
		return float64(n), dirty
	}
	return def, true
}

func mergeHotkeys(v *viper.Viper, key string, def map[string][]string, dirty bool) (map[string][]string, bool) {
	if !v.IsSet(key) {
		return def, true
	}
	raw, ok := v.Get(key).(map[string]interface{})
	if !ok {
		return def, true
	}

	out := make(map[string][]string, len(raw))
	fell := false
	for action, bound := range raw {
		switch b := bound.(type) {
		case string:
			out[action] = []string{b}
		case []interface{}:
			strs := make([]string, 0, len(b))
			good := true
			for _, e := range b {
				s, ok := e.(string)
				if !ok {
					good = false
					break
				}
				strs = append(strs, s)
			}
			if good {
				out[action] = strs
			} else {
				fell = true
			}
		default:
			fell = true
		}
	}
	return out, dirty || fell
}

// Overrides is a stack of command-line environment overrides, one group per
// "--env key::value;key::value" style flag occurrence. It generalizes the
// teacher's package-level PushCommandLineStack/PopCommandLineStack pair into
// an instantiable, mutex-guarded type rather than global state.
type Overrides struct {
	mu    sync.Mutex
	stack []map[string]string
}

// NewOverrides returns an empty override stack.
func NewOverrides() *Overrides {
	return &Overrides{}
}

// Push parses s as a ";"-separated list of "key::value" pairs and pushes
// the resulting group onto the stack. Malformed pairs within the group are
// dropped individually; the rest of the group is still pushed (matching the
// teacher's prefs.PushCommandLineStack behaviour for partially-invalid
// strings).
func (o *Overrides) Push(s string) {
	group := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "::", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}
		group[key] = val
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.stack = append(o.stack, group)
}

// Pop removes and returns the most recently pushed group, formatted back
// into "key::value; key::value" form with keys sorted for determinism. An
// empty stack returns "".
func (o *Overrides) Pop() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.stack) == 0 {
		return ""
	}
	group := o.stack[len(o.stack)-1]
	o.stack = o.stack[:len(o.stack)-1]
	return formatGroup(group)
}

// Get looks up key in the most recently pushed group still on the stack
// (the groups beneath it are not consulted).
func (o *Overrides) Get(key string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.stack) == 0 {
		return "", false
	}
	v, ok := o.stack[len(o.stack)-1][key]
	return v, ok
}

func formatGroup(group map[string]string) string {
	keys := make([]string, 0, len(group))
	for k := range group {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s::%s", k, group[k]))
	}
	return strings.Join(parts, "; ")
}
