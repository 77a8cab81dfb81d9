package main

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/aggregate"
)

// Output formats.
const (
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

type fileConfig struct {
	Output  outputConfig  `toml:"output"`
	Inspect inspectConfig `toml:"inspect"`
}

type outputConfig struct {
	Format string `toml:"format"`
	Pretty bool   `toml:"pretty"`
	Xlsx   string `toml:"xlsx"`
}

type inspectConfig struct {
	Verify    bool   `toml:"verify"`
	Placement string `toml:"placement"`
	Strict    bool   `toml:"strict"`
	Jobs      int    `toml:"jobs"`
	Range     string `toml:"range"`
}

// settings is the resolved command configuration.
type settings struct {
	Output    string
	Format    string
	Pretty    bool
	Xlsx      string
	Verify    bool
	Placement string
	Strict    bool
	Jobs      int
	Range     string
}

// applyConfig overlays the keys defined in a TOML file onto s. Keys whose
// flag was set on the command line keep the flag value.
func applyConfig(path string, s *settings, flags *pflag.FlagSet) error {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	use := func(flag string, key ...string) bool {
		return meta.IsDefined(key...) && !flags.Changed(flag)
	}
	if use("format", "output", "format") {
		s.Format = cfg.Output.Format
	}
	if use("pretty", "output", "pretty") {
		s.Pretty = cfg.Output.Pretty
	}
	if use("xlsx", "output", "xlsx") {
		s.Xlsx = cfg.Output.Xlsx
	}
	if use("verify", "inspect", "verify") {
		s.Verify = cfg.Inspect.Verify
	}
	if use("placement", "inspect", "placement") {
		s.Placement = cfg.Inspect.Placement
	}
	if use("strict", "inspect", "strict") {
		s.Strict = cfg.Inspect.Strict
	}
	if use("jobs", "inspect", "jobs") {
		s.Jobs = cfg.Inspect.Jobs
	}
	if use("range", "inspect", "range") {
		s.Range = cfg.Inspect.Range
	}
	return nil
}

// validate checks the settings and returns the inspection options.
func (s settings) validate() (xlsdraw.Options, error) {
	opts := xlsdraw.DefaultOptions()
	switch s.Format {
	case formatJSON, formatMsgpack:
	default:
		return opts, fmt.Errorf("invalid format: %s (must be json or msgpack)", s.Format)
	}
	placement, err := aggregate.ParsePlacement(s.Placement)
	if err != nil {
		return opts, err
	}
	if s.Jobs < 0 {
		return opts, fmt.Errorf("invalid jobs: %d", s.Jobs)
	}
	if s.Range != "" {
		r, err := xlsdraw.ParseCellRange(s.Range)
		if err != nil {
			return opts, err
		}
		opts.Range = r
	}
	opts.Verify = s.Verify
	opts.Placement = placement
	opts.Strict = s.Strict
	return opts, nil
}

func (s settings) jobs(files int) int {
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}
