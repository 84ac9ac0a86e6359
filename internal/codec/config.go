package codec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jeongseonghan/audio-modem/internal/modem"
)

// FileConfig is the YAML-serializable form of Config, with a Scheme field
// selecting which Modulator implementation to construct.
type FileConfig struct {
	Scheme              string  `yaml:"scheme"` // "fsk" or "bpsk"
	SampleRate          int     `yaml:"sample_rate"`
	FreqSpace           float64 `yaml:"freq_space"`
	FreqMark            float64 `yaml:"freq_mark"`
	BaudRate            int     `yaml:"baud_rate"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// defaultFileConfig mirrors DefaultConfig in YAML-loadable form.
func defaultFileConfig() FileConfig {
	d := modem.DefaultConfig()
	return FileConfig{
		Scheme:              "fsk",
		SampleRate:          d.SampleRate,
		FreqSpace:           d.FreqSpace,
		FreqMark:            d.FreqMark,
		BaudRate:            d.SampleRate / d.SamplesPerBit,
		ConfidenceThreshold: DefaultConfig().ConfidenceThreshold,
	}
}

// LoadFileConfig reads a YAML modem/codec configuration from path, filling
// in reference defaults for any field the file omits.
func LoadFileConfig(path string) (FileConfig, error) {
	fc := defaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("codec: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("codec: parsing config %s: %w", path, err)
	}
	return fc, nil
}

// Modem converts fc into a modem.Config. Validation happens when the
// caller constructs the concrete Modulator (NewFSK/NewBPSK).
func (fc FileConfig) Modem() modem.Config {
	baud := fc.BaudRate
	if baud <= 0 {
		baud = 300
	}
	return modem.Config{
		SampleRate:    fc.SampleRate,
		FreqSpace:     fc.FreqSpace,
		FreqMark:      fc.FreqMark,
		SamplesPerBit: fc.SampleRate / baud,
	}
}

// Config converts fc into the codec's runtime Config (minus the Modulator
// choice, which the caller resolves from Scheme).
func (fc FileConfig) Config() Config {
	return Config{
		Modem:               fc.Modem(),
		ConfidenceThreshold: fc.ConfidenceThreshold,
	}
}

// NewModulator constructs the Modulator named by fc.Scheme ("fsk" or
// "bpsk"; defaults to "fsk" if empty).
func (fc FileConfig) NewModulator() (modem.Modulator, error) {
	cfg := fc.Modem()
	switch fc.Scheme {
	case "", "fsk":
		return modem.NewFSK(cfg)
	case "bpsk":
		return modem.NewBPSK(cfg)
	default:
		return nil, fmt.Errorf("codec: unknown modulation scheme %q", fc.Scheme)
	}
}
