package config

import (
	"errors"
	"fmt"
	"os"

	"Hydra/internal/catalog"
	"Hydra/internal/hydraulics"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const (
	FluidCorrelation = "correlation"
	FluidConstant    = "constant"

	SourceBuiltin  = "builtin"
	SourcePostgres = "postgres"
)

type Config struct {
	Addr        string
	DatabaseURL string
	TokenKey    string
	TLSCert     string
	TLSKey      string
	LogLevel    string

	Fluid   FluidConfig
	Solver  SolverConfig
	Losses  LossesConfig
	Catalog CatalogConfig
	Batch   BatchConfig
	Server  ServerConfig
}

type FluidConfig struct {
	Mode                 string
	ConstantViscosity    float64 // m²/s, derived from ReferenceTemperature when zero
	ReferenceTemperature float64 // °C
}

type SolverConfig struct {
	Method        string
	Form          string
	InitialGuess  float64
	Tolerance     float64
	MaxIterations int
}

type LossesConfig struct {
	ElbowCoefficient float64
}

type CatalogConfig struct {
	Source  string
	Version string
}

type BatchConfig struct {
	Workers int
}

type ServerConfig struct {
	RateLimit float64 // requests per second per IP
	RateBurst int
}

// Load reads .env (if any), the process environment and the ini file at
// HYDRA_CONFIG, falling back to defaults for anything missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("не удалось прочитать .env")
	}

	path := getEnv("HYDRA_CONFIG", "conf/hydra.ini")
	file, err := ini.Load(path)
	if err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).Warn("config file not loaded, using defaults")
		file = ini.Empty()
	}

	cfg := fromEnv()
	loadIni(cfg, file)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the ini file; the environment part keeps its defaults.
func LoadFile(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	cfg := fromEnv()
	loadIni(cfg, file)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Addr:        getEnv("ADDR", ":8443"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func loadIni(cfg *Config, file *ini.File) {
	fluid := file.Section("fluid")
	cfg.Fluid = FluidConfig{
		Mode:                 fluid.Key("mode").MustString(FluidCorrelation),
		ConstantViscosity:    fluid.Key("constant_viscosity").MustFloat64(0),
		ReferenceTemperature: fluid.Key("reference_temperature").MustFloat64(20),
	}
	solver := file.Section("solver")
	cfg.Solver = SolverConfig{
		Method:        solver.Key("method").MustString(string(hydraulics.MethodNewton)),
		Form:          solver.Key("form").MustString(string(hydraulics.FormSymmetric)),
		InitialGuess:  solver.Key("initial_guess").MustFloat64(hydraulics.DefaultInitialGuess),
		Tolerance:     solver.Key("tolerance").MustFloat64(hydraulics.DefaultTolerance),
		MaxIterations: solver.Key("max_iterations").MustInt(hydraulics.DefaultMaxIterations),
	}
	cfg.Losses = LossesConfig{
		ElbowCoefficient: file.Section("losses").Key("elbow_coefficient").MustFloat64(hydraulics.DefaultElbowCoefficient),
	}
	cfg.Catalog = CatalogConfig{
		Source:  file.Section("catalog").Key("source").MustString(SourceBuiltin),
		Version: file.Section("catalog").Key("version").MustString(catalog.V2),
	}
	cfg.Batch = BatchConfig{
		Workers: file.Section("batch").Key("workers").MustInt(4),
	}
	cfg.Server = ServerConfig{
		RateLimit: file.Section("server").Key("rate_limit").MustFloat64(5),
		RateBurst: file.Section("server").Key("rate_burst").MustInt(10),
	}
}

// Validate rejects options the application does not recognise.
func (c *Config) Validate() error {
	switch c.Fluid.Mode {
	case FluidCorrelation, FluidConstant:
	default:
		return fmt.Errorf("config: unknown fluid mode %q", c.Fluid.Mode)
	}
	if c.Fluid.ConstantViscosity < 0 {
		return fmt.Errorf("config: constant_viscosity must not be negative")
	}
	if _, err := c.HydraulicSolver(); err != nil {
		return err
	}
	if c.Losses.ElbowCoefficient < 0 {
		return fmt.Errorf("config: elbow_coefficient must not be negative")
	}
	switch c.Catalog.Source {
	case SourceBuiltin, SourcePostgres:
	default:
		return fmt.Errorf("config: unknown catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.Version == "" {
		return fmt.Errorf("config: catalog version is required")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("config: batch workers must be positive")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("config: rate limit and burst must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ViscosityModel returns the configured way of obtaining ν.
func (c *Config) ViscosityModel() hydraulics.ViscosityModel {
	if c.Fluid.Mode == FluidConstant {
		if c.Fluid.ConstantViscosity > 0 {
			return hydraulics.ConstantViscosity{Nu: c.Fluid.ConstantViscosity, ReferenceC: c.Fluid.ReferenceTemperature}
		}
		return hydraulics.ConstantAt(c.Fluid.ReferenceTemperature)
	}
	return hydraulics.CorrelationViscosity{}
}

func (c *Config) HydraulicSolver() (hydraulics.Solver, error) {
	method, err := hydraulics.ParseMethod(c.Solver.Method)
	if err != nil {
		return hydraulics.Solver{}, fmt.Errorf("config: %w", err)
	}
	form, err := hydraulics.ParseForm(c.Solver.Form)
	if err != nil {
		return hydraulics.Solver{}, fmt.Errorf("config: %w", err)
	}
	if c.Solver.InitialGuess <= 0 || c.Solver.Tolerance <= 0 || c.Solver.MaxIterations <= 0 {
		return hydraulics.Solver{}, fmt.Errorf("config: solver initial_guess, tolerance and max_iterations must be positive")
	}
	return hydraulics.Solver{
		Method:        method,
		Form:          form,
		InitialGuess:  c.Solver.InitialGuess,
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
