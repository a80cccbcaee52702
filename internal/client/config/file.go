package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/jarsclient/internal/flagx"
	"github.com/dmitrijs2005/jarsclient/internal/timex"
)

// FileConfig is a DTO used only for decoding config files. Durations use
// timex.Duration so files may say "3s" or give integer nanoseconds. Absent
// keys leave the current value alone.
type FileConfig struct {
	ServerURL string          `json:"server_url" yaml:"server_url"`
	Mode      string          `json:"mode" yaml:"mode"`
	Timeout   *timex.Duration `json:"timeout" yaml:"timeout"`
	SessionDB *string         `json:"session_db" yaml:"session_db"`
	SeedFile  string          `json:"seed_file" yaml:"seed_file"`
	Debug     *bool           `json:"debug" yaml:"debug"`
}

// parseFile overlays cfg with the file named by -c or -config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON. It panics on read
// or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return nil, err
		}
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.Mode != "" {
		cfg.Mode = Mode(strings.ToLower(fc.Mode))
	}
	if fc.Timeout != nil {
		cfg.Timeout = time.Duration(fc.Timeout.Duration)
	}
	if fc.SessionDB != nil {
		cfg.SessionDB = *fc.SessionDB
	}
	if fc.SeedFile != "" {
		cfg.SeedFile = fc.SeedFile
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
}
