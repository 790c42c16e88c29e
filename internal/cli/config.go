package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/chazu/cubed/pkg/decomp"
)

// DefaultConfigFile is read from the working directory when --config is
// not given. A missing default file is not an error.
const DefaultConfigFile = "cubed.toml"

// loadConfig overlays the TOML file at path on decomp.DefaultConfig. Keys
// absent from the file keep their defaults.
func loadConfig(path string, required bool) (decomp.Config, error) {
	cfg := decomp.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return decomp.DefaultConfig(), nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

// configFlags are the per-field overrides shared by every command.
type configFlags struct {
	path        string
	baseUnit    float64
	initialDx   float64
	gap         float64
	expansion   float64
	minDx       float64
	maxDx       float64
	step        float64
	arrangement string
	translate   string
	scale       string
	bounds      string
}

func (f *configFlags) register(flags *pflag.FlagSet) {
	def := decomp.DefaultConfig()
	flags.StringVarP(&f.path, "config", "c", "", "TOML config file (default ./"+DefaultConfigFile+" if present)")
	flags.Float64Var(&f.baseUnit, "base-unit", def.BaseUnit, "side x of the central box")
	flags.Float64Var(&f.initialDx, "initial-dx", def.InitialDx, "initial decomposition width dx0")
	flags.Float64Var(&f.gap, "gap", def.Gap, "seam between box and pieces")
	flags.Float64Var(&f.expansion, "expansion", def.Expansion, "extra outward offset as a multiple of dx0")
	flags.Float64Var(&f.minDx, "min-dx", def.MinDx, "lowest accepted dx")
	flags.Float64Var(&f.maxDx, "max-dx", def.MaxDx, "highest accepted dx")
	flags.Float64Var(&f.step, "step", def.Step, "slider step")
	flags.StringVar(&f.arrangement, "arrangement", def.Arrangement.String(), "solid placement: assembled or pieces")
	flags.StringVar(&f.translate, "translate", def.Translate.String(), "translation policy: half or full")
	flags.StringVar(&f.scale, "scale", def.Scale.String(), "scale policy: ratio or absolute")
	flags.StringVar(&f.bounds, "bounds", def.Bounds.String(), "out-of-range policy: reject or clamp")
}

// resolve loads the config file and applies every flag the user set
// explicitly, then validates the result.
func (f *configFlags) resolve(flags *pflag.FlagSet) (decomp.Config, error) {
	path, required := f.path, true
	if path == "" {
		path, required = DefaultConfigFile, false
	}
	cfg, err := loadConfig(path, required)
	if err != nil {
		return cfg, err
	}

	floats := map[string]struct {
		src float64
		dst *float64
	}{
		"base-unit":  {f.baseUnit, &cfg.BaseUnit},
		"initial-dx": {f.initialDx, &cfg.InitialDx},
		"gap":        {f.gap, &cfg.Gap},
		"expansion":  {f.expansion, &cfg.Expansion},
		"min-dx":     {f.minDx, &cfg.MinDx},
		"max-dx":     {f.maxDx, &cfg.MaxDx},
		"step":       {f.step, &cfg.Step},
	}
	for name, v := range floats {
		if flags.Changed(name) {
			*v.dst = v.src
		}
	}

	policies := []struct {
		name   string
		value  string
		target interface{ UnmarshalText([]byte) error }
	}{
		{"arrangement", f.arrangement, &cfg.Arrangement},
		{"translate", f.translate, &cfg.Translate},
		{"scale", f.scale, &cfg.Scale},
		{"bounds", f.bounds, &cfg.Bounds},
	}
	for _, p := range policies {
		if !flags.Changed(p.name) {
			continue
		}
		if err := p.target.UnmarshalText([]byte(p.value)); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func withConfig(ctx context.Context, cfg decomp.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext returns the resolved config, or the defaults.
func configFromContext(ctx context.Context) decomp.Config {
	if cfg, ok := ctx.Value(configKey).(decomp.Config); ok {
		return cfg
	}
	return decomp.DefaultConfig()
}

// writeDefaultConfig writes the default config as TOML, for `cubed config`.
func writeDefaultConfig(w io.Writer) error {
	return toml.NewEncoder(w).Encode(decomp.DefaultConfig())
}
