package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gur-shatz/empdir/internal/cli"
	"github.com/gur-shatz/empdir/internal/store"
)

var validate = validator.New()

const (
	DefaultVersion = "v1"
	DefaultColor   = "lime"
	DefaultListen  = ":8080"
)

// Settings is the process-wide configuration, resolved once at startup.
type Settings struct {
	Version   string `validate:"required"`
	ColorName string `validate:"required"`
	ColorHex  string `validate:"required"`
	Listen    string `validate:"required"`
	Templates string
	DB        store.Config

	// Warnings lists non-fatal problems found while resolving, such as a
	// DBPORT that is not a number.
	Warnings []string
}

// Option configures Load.
type Option func(*options)

type options struct {
	env map[string]string
}

// WithEnv overrides the environment variable source.
// By default, os.Environ() is used.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		o.env = env
	}
}

// Load resolves Settings from, in priority order, command-line flags,
// environment variables, the settings file and built-in defaults.
// An unknown color is fatal; a malformed port falls back to the driver's
// default and is reported in Warnings.
func Load(flags cli.Config, opts ...Option) (*Settings, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	env := o.env
	if env == nil {
		env = environMap()
	}

	file, err := LoadFile(flags.ConfigFile, env)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Version:   first(flags.Version, env["VERSION"], file.App.Version, DefaultVersion),
		ColorName: first(flags.Color, env["APP_COLOR"], file.App.Color, DefaultColor),
		Listen:    first(flags.Listen, env["LISTEN"], file.App.Listen, DefaultListen),
		Templates: first(flags.Templates, env["TEMPLATES"], file.App.Templates),
	}

	s.ColorHex, err = ColorHex(s.ColorName)
	if err != nil {
		return nil, err
	}

	driver := first(env["DBDRIVER"], file.DB.Driver, "mysql")
	s.DB = store.Config{
		Driver:          driver,
		Host:            first(env["DBHOST"], file.DB.Host, "localhost"),
		User:            first(env["DBUSER"], file.DB.User, "root"),
		Password:        first(env["DBPWD"], file.DB.Password, "pw"),
		Name:            first(env["DATABASE"], file.DB.Name, "employees"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		CreateSchema:    flags.InitSchema || file.DB.CreateSchema || driver == "sqlite",
	}
	if file.DB.MaxOpenConns != 0 {
		s.DB.MaxOpenConns = file.DB.MaxOpenConns
	}
	if file.DB.MaxIdleConns != nil {
		s.DB.MaxIdleConns = *file.DB.MaxIdleConns
	}
	if file.DB.ConnMaxLifetime != 0 {
		s.DB.ConnMaxLifetime = file.DB.ConnMaxLifetime
	}

	rawPort := first(env["DBPORT"], file.DB.Port)
	port, ok := ParsePort(rawPort, store.DefaultPort(driver))
	if !ok {
		s.Warnings = append(s.Warnings, fmt.Sprintf("invalid DBPORT value %q, using default port %d", rawPort, port))
	}
	s.DB.Port = port

	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// ParsePort parses raw as a TCP port. Empty input yields def with ok=true;
// anything that is not an integer in 1..65535 yields def with ok=false.
func ParsePort(raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 65535 {
		return def, false
	}
	return n, true
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// environMap returns the current environment as a key→value map.
func environMap() map[string]string {
	env := os.Environ()
	m := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}
