package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/polycryst/internal/aggregate"
	"github.com/san-kum/polycryst/internal/elastic"
	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/kinematics"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/recryst"
	"github.com/san-kum/polycryst/internal/slip"
)

const (
	DefaultLoading       = "uniaxial_tension"
	DefaultStrainRate    = engine.DefaultStrainRate
	DefaultInterpolation = "step"
	DefaultSpin          = "fixed"
	DefaultGrowth        = "none"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Name      string  `yaml:"name"`
	Seed      uint64  `yaml:"seed"`
	Grains    int     `yaml:"grains"`
	Steps     int     `yaml:"steps"`
	WriteStep int     `yaml:"write_step"`
	Dt        float64 `yaml:"dt"`
	Workers   int     `yaml:"workers"`

	Elastic           ElasticConfig   `yaml:"elastic"`
	Flow              FlowConfig      `yaml:"flow"`
	Hardening         HardeningConfig `yaml:"hardening"`
	HallPetch         HallPetchConfig `yaml:"hall_petch"`
	GrainSize         GrainSizeConfig `yaml:"grain_size"`
	Recrystallization RecrystConfig   `yaml:"recrystallization"`
	Loading           LoadingConfig   `yaml:"loading"`
	Geometry          GeometryConfig  `yaml:"geometry"`
	Orientation       SpinConfig      `yaml:"orientation"`
	Output            OutputConfig    `yaml:"output"`

	dir string
}

// ElasticConfig holds cubic constants in Pa. Shear is "c44" (σ12 = c44·ε12)
// or "2c44" (σ12 = 2·c44·ε12).
type ElasticConfig struct {
	C11   float64 `yaml:"c11"`
	C12   float64 `yaml:"c12"`
	C44   float64 `yaml:"c44"`
	Koef  float64 `yaml:"koef"`
	Shear string  `yaml:"shear"`
}

type FlowConfig struct {
	Gamma0 float64 `yaml:"gamma0"`
	M      float64 `yaml:"m"`
}

// HardeningConfig takes tau_c0 and tau_sat in Pa and h0 in MPa.
type HardeningConfig struct {
	TauC0  float64 `yaml:"tau_c0"`
	TauSat float64 `yaml:"tau_sat"`
	H0     float64 `yaml:"h0"`
	A      float64 `yaml:"a"`
	QLat   float64 `yaml:"qlat"`
}

type HallPetchConfig struct {
	Enabled bool    `yaml:"enabled"`
	B       float64 `yaml:"b"`
	Ky      float64 `yaml:"k_y"`
}

// GrainSizeConfig gives the arithmetic mean and standard deviation of the
// grain radius in m. They are not the mu and sigma of the underlying normal
// distribution.
type GrainSizeConfig struct {
	MeanRadius   float64 `yaml:"mean_radius"`
	RadiusStdDev float64 `yaml:"radius_std_dev"`
}

type RecrystConfig struct {
	Enabled     bool         `yaml:"enabled"`
	Alpha       float64      `yaml:"alpha"`
	Egb         float64      `yaml:"egb"`
	R0          float64      `yaml:"r0"`
	SubGrains   int          `yaml:"subgrains"`
	StressUnits string       `yaml:"stress_units"`
	Eligibility string       `yaml:"eligibility"`
	Growth      GrowthConfig `yaml:"growth"`
}

type GrowthConfig struct {
	Model       string  `yaml:"model"`
	M0          float64 `yaml:"m0"`
	Q           float64 `yaml:"q"`
	Temperature float64 `yaml:"temperature"`
}

// LoadingConfig selects a constant preset gradient or a trajectory file.
// A trajectory file wins when both are set.
type LoadingConfig struct {
	Preset         string  `yaml:"preset"`
	Rate           float64 `yaml:"rate"`
	TrajectoryFile string  `yaml:"trajectory_file"`
	Interpolation  string  `yaml:"interpolation"`
}

type GeometryConfig struct {
	BurgersFile string `yaml:"burgers_file"`
	NormalsFile string `yaml:"normals_file"`
}

type SpinConfig struct {
	Spin string `yaml:"spin"`
}

type OutputConfig struct {
	Weighting  string `yaml:"weighting"`
	KeepGrains bool   `yaml:"keep_grains"`
}

// DefaultConfig returns the copper setup.
func DefaultConfig() *Config {
	p := engine.DefaultParams()
	return &Config{
		Name:      "copper",
		Seed:      42,
		Grains:    p.Grains,
		Steps:     p.Steps,
		WriteStep: p.WriteStep,
		Dt:        p.Dt,
		Elastic: ElasticConfig{
			C11: p.Elastic.C11, C12: p.Elastic.C12, C44: p.Elastic.C44, Koef: p.Elastic.Koef,
			Shear: p.Elastic.Shear.String(),
		},
		Flow: FlowConfig{Gamma0: p.Flow.Gamma0, M: p.Flow.M},
		Hardening: HardeningConfig{
			TauC0:  p.TauC0,
			TauSat: p.Hardening.TauSat,
			H0:     p.Hardening.H0,
			A:      p.Hardening.A,
			QLat:   p.Hardening.QLat,
		},
		HallPetch: HallPetchConfig{Enabled: p.HallPetch.Enabled, B: p.HallPetch.B, Ky: p.HallPetch.Ky},
		GrainSize: GrainSizeConfig{MeanRadius: p.GrainSizeMean, RadiusStdDev: p.GrainSizeStdDev},
		Recrystallization: RecrystConfig{
			Enabled:     p.Recrystallization,
			Alpha:       p.Alpha,
			Egb:         p.Egb,
			R0:          p.R0,
			SubGrains:   p.SubGrains,
			StressUnits: p.StressUnits.String(),
			Eligibility: p.Eligibility.String(),
			Growth:      GrowthConfig{Model: DefaultGrowth},
		},
		Loading: LoadingConfig{
			Preset:        DefaultLoading,
			Rate:          DefaultStrainRate,
			Interpolation: DefaultInterpolation,
		},
		Orientation: SpinConfig{Spin: DefaultSpin},
		Output:      OutputConfig{Weighting: p.Weighting.String()},
	}
}

// Load reads a YAML file over DefaultConfig. Unknown keys are rejected.
// Relative input file paths are resolved against the directory of path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every enumerated field and the model parameters.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Loading.TrajectoryFile == "" {
		if _, err := kinematics.Preset(c.Loading.Preset, c.Loading.Rate); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if _, err := kinematics.ParseInterpolation(c.Loading.Interpolation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if (c.Geometry.BurgersFile == "") != (c.Geometry.NormalsFile == "") {
		return fmt.Errorf("%w: burgers_file and normals_file must be set together", ErrInvalid)
	}
	if _, err := c.Spin(); err != nil {
		return err
	}
	if _, err := c.Growth(); err != nil {
		return err
	}
	return nil
}

// Params converts the file layout into engine parameters.
func (c *Config) Params() (engine.Params, error) {
	units, err := recryst.ParseStressUnits(c.Recrystallization.StressUnits)
	if err != nil {
		return engine.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	elig, err := recryst.ParseEligibility(c.Recrystallization.Eligibility)
	if err != nil {
		return engine.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	weighting, err := aggregate.ParseWeighting(c.Output.Weighting)
	if err != nil {
		return engine.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	shear, err := elastic.ParseShearConvention(c.Elastic.Shear)
	if err != nil {
		return engine.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	p := engine.Params{
		Grains:    c.Grains,
		Steps:     c.Steps,
		WriteStep: c.WriteStep,
		Dt:        c.Dt,
		Elastic: elastic.Constants{
			C11: c.Elastic.C11, C12: c.Elastic.C12, C44: c.Elastic.C44, Koef: c.Elastic.Koef,
			Shear: shear,
		},
		Flow:  slip.Flow{Gamma0: c.Flow.Gamma0, M: c.Flow.M},
		TauC0: c.Hardening.TauC0,
		Hardening: slip.Hardening{
			H0:     c.Hardening.H0,
			TauSat: c.Hardening.TauSat,
			A:      c.Hardening.A,
			QLat:   c.Hardening.QLat,
		},
		HallPetch:         slip.HallPetch{Enabled: c.HallPetch.Enabled, B: c.HallPetch.B, Ky: c.HallPetch.Ky},
		GrainSizeMean:     c.GrainSize.MeanRadius,
		GrainSizeStdDev:   c.GrainSize.RadiusStdDev,
		Recrystallization: c.Recrystallization.Enabled,
		Alpha:             c.Recrystallization.Alpha,
		Egb:               c.Recrystallization.Egb,
		R0:                c.Recrystallization.R0,
		SubGrains:         c.Recrystallization.SubGrains,
		StressUnits:       units,
		Eligibility:       elig,
		Weighting:         weighting,
	}
	if err := p.Validate(); err != nil {
		return engine.Params{}, err
	}
	return p, nil
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Path builds the macroscopic velocity gradient history.
func (c *Config) Path() (kinematics.Path, error) {
	if c.Loading.TrajectoryFile != "" {
		mode, err := kinematics.ParseInterpolation(c.Loading.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return kinematics.LoadTrajectoryFile(c.resolve(c.Loading.TrajectoryFile), mode)
	}
	l, err := kinematics.Preset(c.Loading.Preset, c.Loading.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return kinematics.Constant{L: l}, nil
}

// SlipGeometry returns the built-in FCC family unless both direction files
// are given.
func (c *Config) SlipGeometry() (*slip.Geometry, error) {
	if c.Geometry.BurgersFile == "" && c.Geometry.NormalsFile == "" {
		return slip.DefaultFCC(), nil
	}
	return slip.LoadGeometryFiles(c.resolve(c.Geometry.BurgersFile), c.resolve(c.Geometry.NormalsFile))
}

func (c *Config) Spin() (orientation.Updater, error) {
	switch c.Orientation.Spin {
	case "", "fixed":
		return orientation.Fixed{}, nil
	case "lattice_spin":
		return orientation.LatticeSpin{Workers: c.Workers}, nil
	default:
		return nil, fmt.Errorf("%w: unknown spin model %q (want fixed or lattice_spin)", ErrInvalid, c.Orientation.Spin)
	}
}

func (c *Config) Growth() (recryst.GrowthModel, error) {
	g := c.Recrystallization.Growth
	switch g.Model {
	case "", "none":
		return recryst.NoGrowth{}, nil
	case "facet_migration":
		if g.Temperature <= 0 || g.M0 < 0 {
			return nil, fmt.Errorf("%w: facet migration needs temperature > 0 and m0 >= 0", ErrInvalid)
		}
		return recryst.FacetMigration{
			M0:          g.M0,
			Q:           g.Q,
			Temperature: g.Temperature,
			Egb:         c.Recrystallization.Egb,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown growth model %q (want none or facet_migration)", ErrInvalid, g.Model)
	}
}

// Options resolves the pluggable engine parts named by the configuration.
func (c *Config) Options(logger *slog.Logger, observers ...engine.Observer) (engine.Options, error) {
	path, err := c.Path()
	if err != nil {
		return engine.Options{}, err
	}
	geom, err := c.SlipGeometry()
	if err != nil {
		return engine.Options{}, err
	}
	spin, err := c.Spin()
	if err != nil {
		return engine.Options{}, err
	}
	growth, err := c.Growth()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Seed:       c.Seed,
		Geometry:   geom,
		Path:       path,
		Spin:       spin,
		Growth:     growth,
		Logger:     logger,
		Observers:  observers,
		Workers:    c.Workers,
		KeepGrains: c.Output.KeepGrains,
	}, nil
}

// Engine builds a ready engine from the configuration.
func (c *Config) Engine(logger *slog.Logger, observers ...engine.Observer) (*engine.Engine, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	opts, err := c.Options(logger, observers...)
	if err != nil {
		return nil, err
	}
	return engine.New(p, opts)
}
