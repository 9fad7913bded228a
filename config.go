package ledmachine

// This file contains the configuration of an installation, loaded from a
// YAML file with command line flags layered on top by the caller

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	yaml "gopkg.in/yaml.v2"
)

type StripConfig struct {
	Server  string `yaml:"server"`
	Channel uint8  `yaml:"channel"`
	Pixels  int    `yaml:"pixels"`
	Reverse bool   `yaml:"reverse"`
}

type RangeConfig struct {
	Start  int `yaml:"start"`
	Length int `yaml:"length"`
}

type LampConfig struct {
	Name   string        `yaml:"name"`
	Ranges []RangeConfig `yaml:"ranges"`
}

type SourcesConfig struct {
	Websocket    string `yaml:"websocket"`
	Redis        string `yaml:"redis"`
	RedisChannel string `yaml:"redis_channel"`
	Listen       string `yaml:"listen"`
	Poll         string `yaml:"poll"`
	Stdin        bool   `yaml:"stdin"`
}

type MeterConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sample_rate"`
}

type Config struct {
	Strips       []StripConfig  `yaml:"strips"`
	HiddenPixels int            `yaml:"hidden_pixels"`
	Offsets      map[string]int `yaml:"offsets"`
	Lamps        []LampConfig   `yaml:"lamps"`

	// Initial is applied as a command before any source is started
	Initial     string        `yaml:"initial"`
	Dim         float64       `yaml:"dim"`
	FramePeriod time.Duration `yaml:"frame_period"`

	Sources SourcesConfig `yaml:"sources"`
	Meter   MeterConfig   `yaml:"meter"`
}

// DefaultConfig is a single 450 pixel strip on the local fadecandy server
func DefaultConfig() (cfg *Config) {
	return &Config{
		Strips:       []StripConfig{{Server: "localhost:7890", Pixels: 450}},
		HiddenPixels: DefaultHiddenPixels,
		Offsets:      map[string]int{},
		Dim:          DefaultDim,
		FramePeriod:  DefaultFramePeriod,
		Sources: SourcesConfig{
			RedisChannel: "ledmachine",
		},
		Meter: MeterConfig{
			SampleRate: defaultSampleRate,
		},
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(fn string) (cfg *Config, err errors.Error) {
	cfg = DefaultConfig()

	data, errGo := ioutil.ReadFile(fn)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("file", fn).With("stack", stack.Trace().TrimRuntime())
	}
	if err = cfg.Parse(data); err != nil {
		return nil, err.With("file", fn)
	}
	return cfg, nil
}

// Parse decodes YAML over the values already present
func (cfg *Config) Parse(data []byte) (err errors.Error) {
	if errGo := yaml.UnmarshalStrict(data, cfg); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Pixels is the number of logical pixels over all of the strips
func (cfg *Config) Pixels() (total int) {
	for _, strip := range cfg.Strips {
		total += strip.Pixels
	}
	return total
}

func (cfg *Config) Validate() (err errors.Error) {
	if len(cfg.Strips) == 0 {
		return errors.New("at least one strip must be configured").With("stack", stack.Trace().TrimRuntime())
	}
	for i, strip := range cfg.Strips {
		if strip.Pixels <= 0 {
			return errors.New("strip has no pixels").With("strip", i).With("stack", stack.Trace().TrimRuntime())
		}
	}
	total := cfg.Pixels()
	if cfg.HiddenPixels < 0 || cfg.HiddenPixels >= total {
		return errors.New("hidden pixels must leave some pixels visible").With("hidden_pixels", cfg.HiddenPixels).With("pixels", total).With("stack", stack.Trace().TrimRuntime())
	}
	if cfg.Dim < 0 || cfg.Dim > 1 {
		return errors.New("dim must be between 0 and 1").With("dim", cfg.Dim).With("stack", stack.Trace().TrimRuntime())
	}
	if cfg.FramePeriod < 0 {
		return errors.New("frame period cannot be negative").With("frame_period", cfg.FramePeriod).With("stack", stack.Trace().TrimRuntime())
	}
	for _, lamp := range cfg.Lamps {
		if lamp.Name == "" {
			return errors.New("lamps need a name").With("stack", stack.Trace().TrimRuntime())
		}
		for _, r := range lamp.Ranges {
			if r.Start < 0 || r.Length <= 0 || r.Start+r.Length > total {
				msg := fmt.Sprintf("lamp range [%d, %d) is outside of the %d pixels", r.Start, r.Start+r.Length, total)
				return errors.New(msg).With("lamp", lamp.Name).With("stack", stack.Trace().TrimRuntime())
			}
		}
	}
	if cfg.Sources.Redis != "" && cfg.Sources.RedisChannel == "" {
		return errors.New("a redis source needs a channel").With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Mapping lays the strips given end to end, strips configured as reversed
// run backwards.  The strips must be in the order they are configured
func (cfg *Config) Mapping(strips []Strip) (m *Mapping, err errors.Error) {
	if len(strips) != len(cfg.Strips) {
		return nil, errors.New("strip count does not match the configuration").With("strips", len(strips)).With("configured", len(cfg.Strips)).With("stack", stack.Trace().TrimRuntime())
	}
	segments := make([]Segment, 0, len(strips))
	for i, strip := range cfg.Strips {
		segments = append(segments, Segment{Strip: i, Length: strip.Pixels, Reverse: strip.Reverse})
	}
	return NewMapping(strips, segments)
}

// OPCStrips creates the fadecandy strips described by the configuration
func (cfg *Config) OPCStrips() (strips []Strip) {
	strips = make([]Strip, 0, len(cfg.Strips))
	for _, strip := range cfg.Strips {
		strips = append(strips, NewOPCStrip(strip.Server, strip.Channel, strip.Pixels))
	}
	return strips
}
