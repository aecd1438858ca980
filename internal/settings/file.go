package settings

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no -c flag is given. Its absence is not an error.
const DefaultFile = "empdir.yaml"

const noValuePlaceholder = "<no value>"

// File is the optional YAML settings file. Every field is optional;
// empty values fall through to built-in defaults. Environment variables
// and flags override it.
//
//	app:
//	  version: v2
//	  color: '{{ env "TEAM_COLOR" | default "pink" }}'
//	  listen: ":8080"
//	db:
//	  driver: mysql
//	  host: db.internal
//	  port: 3306
//	  max_open_conns: 20
//	  conn_max_lifetime: 2m
type File struct {
	App FileApp `yaml:"app"`
	DB  FileDB  `yaml:"db"`
}

// FileApp is the app: section.
type FileApp struct {
	Version   string `yaml:"version"`
	Color     string `yaml:"color"`
	Listen    string `yaml:"listen"`
	Templates string `yaml:"templates"`
}

// FileDB is the db: section. Port stays a string so a malformed value
// gets the same fallback treatment as DBPORT.
type FileDB struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    *int          `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	CreateSchema    bool          `yaml:"create_schema"`
}

// ResolveYAMLPath returns path if it exists, otherwise the .yml/.yaml
// sibling if that exists, otherwise path unchanged.
func ResolveYAMLPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	alt := ""
	if base, ok := strings.CutSuffix(path, ".yaml"); ok {
		alt = base + ".yml"
	} else if base, ok := strings.CutSuffix(path, ".yml"); ok {
		alt = base + ".yaml"
	}
	if alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return path
}

// LoadFile reads a settings file. An explicitly named file must exist;
// when path is empty, DefaultFile is tried and a missing one yields an
// empty File.
func LoadFile(path string, env map[string]string) (File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	path = ResolveYAMLPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	f, err := ParseFile(data, env)
	if err != nil {
		return File{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return f, nil
}

// ParseFile expands Go templates in data against env, then decodes the
// YAML into a File.
func ParseFile(data []byte, env map[string]string) (File, error) {
	processed, err := expand(data, env)
	if err != nil {
		return File{}, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(processed, &raw); err != nil {
		return File{}, fmt.Errorf("parse yaml: %w", err)
	}

	var f File
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &f,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return File{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return File{}, fmt.Errorf("decode settings: %w", err)
	}
	return f, nil
}

// expand runs data through text/template with the environment as both
// dot-data and the env function. Undefined references are an error.
func expand(data []byte, env map[string]string) ([]byte, error) {
	if !bytes.Contains(data, []byte("{{")) {
		return data, nil
	}

	tmpl, err := template.New("settings").
		Option("missingkey=zero").
		Funcs(templateFuncs(env)).
		Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	td := make(map[string]any, len(env))
	for k, v := range env {
		td[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, td); err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	out := buf.Bytes()
	if bytes.Contains(out, []byte(noValuePlaceholder)) {
		var problems []string
		src := bytes.Split(data, []byte("\n"))
		for i, line := range bytes.Split(out, []byte("\n")) {
			if bytes.Contains(line, []byte(noValuePlaceholder)) && i < len(src) {
				problems = append(problems, fmt.Sprintf("  line %d: %s", i+1, strings.TrimSpace(string(src[i]))))
			}
		}
		return nil, fmt.Errorf("undefined variable in settings. Use 'default' or define the variable.\nProblem lines:\n%s", strings.Join(problems, "\n"))
	}
	return out, nil
}

func templateFuncs(env map[string]string) template.FuncMap {
	return template.FuncMap{
		"default": func(def, val any) any {
			if val == nil {
				return def
			}
			if s, ok := val.(string); ok && s == "" {
				return def
			}
			return val
		},

		"env": func(name string) string {
			return env[name]
		},

		"required": func(msg string, val any) (any, error) {
			if val == nil {
				return nil, fmt.Errorf("%s", msg)
			}
			if s, ok := val.(string); ok && s == "" {
				return nil, fmt.Errorf("%s", msg)
			}
			return val, nil
		},
	}
}
