package codec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileConfig_DefaultsWhenFieldsOmitted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modem.yaml")
	if err := os.WriteFile(path, []byte("scheme: fsk\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000 default", fc.SampleRate)
	}
	if fc.ConfidenceThreshold != DefaultConfig().ConfidenceThreshold {
		t.Errorf("ConfidenceThreshold = %v, want default", fc.ConfidenceThreshold)
	}
}

func TestLoadFileConfig_OverridesGiven(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modem.yaml")
	body := "scheme: bpsk\nsample_rate: 44100\nbaud_rate: 150\nconfidence_threshold: 3.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.SampleRate != 44100 || fc.BaudRate != 150 || fc.ConfidenceThreshold != 3.5 {
		t.Errorf("unexpected FileConfig: %+v", fc)
	}

	mod, err := fc.NewModulator()
	if err != nil {
		t.Fatalf("NewModulator: %v", err)
	}
	if mod.SamplesPerBit() != 44100/150 {
		t.Errorf("SamplesPerBit() = %d, want %d", mod.SamplesPerBit(), 44100/150)
	}
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	if _, err := LoadFileConfig("/nonexistent/modem.yaml"); err == nil {
		t.Error("LoadFileConfig with missing file should return an error")
	}
}

func TestFileConfig_UnknownScheme(t *testing.T) {
	fc := defaultFileConfig()
	fc.Scheme = "qpsk"
	if _, err := fc.NewModulator(); err == nil {
		t.Error("NewModulator with unknown scheme should return an error")
	}
}
