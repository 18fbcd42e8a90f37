// Package config loads the mapsim settings from a YAML file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/stuarthighley/doomfx/fakeradio"
	"github.com/stuarthighley/doomfx/specials"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("schema.json", schemaJSON)

type Config struct {
	Game  string `yaml:"game"`
	Seed  int    `yaml:"seed"`  // Starting index into the random table
	Ticks int    `yaml:"ticks"` // Tics to run after spawning

	Compat   Compat   `yaml:"compat"`
	Radio    Radio    `yaml:"radio"`
	Snapshot Snapshot `yaml:"snapshot"`
	Trace    Trace    `yaml:"trace"`
}

// Compat switches the original games' quirks on or off.
type Compat struct {
	DoubleBlazeCloseSound bool `yaml:"double_blaze_close_sound"`
	PlainReopenSound      bool `yaml:"plain_reopen_sound"`
}

type Radio struct {
	Enabled     bool    `yaml:"enabled"`
	Darkness    float64 `yaml:"darkness"`
	LongWallMin float64 `yaml:"long_wall_min"`
	LongWallMax float64 `yaml:"long_wall_max"`
	LongWallDiv float64 `yaml:"long_wall_div"`

	// Flats and textures that light themselves. Planes using them cast no
	// shadows.
	Glow []string `yaml:"glow"`
}

// Snapshot says where the mover state is saved after the run. An empty
// path disables it.
type Snapshot struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Trace says where sector heights and light levels are logged. An empty
// path disables it.
type Trace struct {
	Path  string `yaml:"path"`
	Every int    `yaml:"every"`
}

// Load reads the configuration at path. An empty path gives the defaults.
// Settings missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Parse(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, nil
}

// Parse validates the YAML document b and decodes it over cfg.
func Parse(b []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc != nil {
		// The schema works on JSON values, so go through JSON to get them.
		jb, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(jb))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if err := schema.Validate(v); err != nil {
			return err
		}
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func Defaults() Config {
	rc := fakeradio.DefaultConfig()
	return Config{
		Game:  "doom",
		Ticks: 35,
		Compat: Compat{
			DoubleBlazeCloseSound: specials.DefaultCompat.DoubleBlazeCloseSound,
			PlainReopenSound:      specials.DefaultCompat.PlainReopenSound,
		},
		Radio: Radio{
			Enabled:     rc.Enabled,
			Darkness:    rc.Darkness,
			LongWallMin: rc.LongWallMin,
			LongWallMax: rc.LongWallMax,
			LongWallDiv: rc.LongWallDiv,
		},
		Snapshot: Snapshot{Level: "default"},
		Trace:    Trace{Every: 1},
	}
}

// Validate checks the settings the schema cannot.
func (c Config) Validate() error {
	if _, err := specials.ParseGame(c.Game); err != nil {
		return err
	}
	if c.Radio.LongWallMin > c.Radio.LongWallMax && c.Radio.LongWallDiv > 0 {
		return fmt.Errorf("radio: long_wall_min %v is above long_wall_max %v", c.Radio.LongWallMin, c.Radio.LongWallMax)
	}
	if c.Trace.Every < 1 {
		return fmt.Errorf("trace: every must be at least 1, got %v", c.Trace.Every)
	}
	return nil
}

// SimOptions returns the mover settings. The game has already been checked
// by Validate.
func (c Config) SimOptions() specials.Options {
	game, _ := specials.ParseGame(c.Game)
	return specials.Options{
		Game: game,
		Seed: c.Seed,
		Compat: specials.Compat{
			DoubleBlazeCloseSound: c.Compat.DoubleBlazeCloseSound,
			PlainReopenSound:      c.Compat.PlainReopenSound,
		},
	}
}

func (c Config) RadioConfig() fakeradio.Config {
	return fakeradio.Config{
		Enabled:     c.Radio.Enabled,
		Darkness:    c.Radio.Darkness,
		LongWallMin: c.Radio.LongWallMin,
		LongWallMax: c.Radio.LongWallMax,
		LongWallDiv: c.Radio.LongWallDiv,
	}
}
