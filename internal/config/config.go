package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/malston/tkgi-pipeline-standards/internal/branding"
	"github.com/malston/tkgi-pipeline-standards/internal/logging"
	"github.com/malston/tkgi-pipeline-standards/internal/manifest"
	"github.com/malston/tkgi-pipeline-standards/internal/render"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys with special handling. Every other key becomes a render variable.
const (
	KeyTemplateType = "template_type"
	KeyOutputDir    = "output_dir"
	KeyTemplateDirs = "template_dirs"
	KeyEnvVariables = "env_variables"
)

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"org_name":               "Utilities-tkgieng",
		"repo_name":              "my-service",
		"default_branch":         "develop",
		"release_branch":         "release",
		"default_environment":    "lab",
		"default_foundation":     "cml-k8s-n-01",
		"default_pipeline":       "main",
		"default_timer_duration": "3h",
		"github_domain":          "github.com",
		"datacenter_pattern":     `^([a-z]{3})-([a-z0-9]+)-([np])-([0-9]+)$`,
		KeyTemplateType:          string(templatetype.Kustomize),
		KeyOutputDir:             "./output",
		KeyEnvVariables: map[string]any{
			"TEST_MODE": "false",
			"DEBUG":     "false",
			"VERBOSE":   "false",
		},
	}
}

// Dir returns the user config directory ($XDG_CONFIG_HOME/pipegen).
func Dir() string {
	return filepath.Join(xdg.ConfigHome, branding.ConfigDir())
}

// UserFile returns the path of the user config file.
func UserFile() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Settings are the resolved inputs of a generation run.
type Settings struct {
	TemplateType templatetype.Type
	OutputDir    string
	TemplateDirs []string
	Context      render.Context
	// Values holds every plain setting as a string, env variables excluded.
	Values map[string]string
	// Env holds the env_variables sub-mapping with upper-case names.
	Env map[string]string
}

// Resolver layers configuration sources.
type Resolver struct {
	fs          afero.Fs
	userFile    string
	projectFile string
	overrides   map[string]any
}

// NewResolver creates a Resolver reading the default user config file.
func NewResolver(fs afero.Fs) *Resolver {
	return &Resolver{fs: fs, userFile: UserFile(), overrides: map[string]any{}}
}

// WithUserFile replaces the user config path. An empty path disables it.
func (r *Resolver) WithUserFile(path string) *Resolver {
	r.userFile = path
	return r
}

// WithProjectFile sets a project config file. Unlike the user file it must
// exist and parse.
func (r *Resolver) WithProjectFile(path string) *Resolver {
	r.projectFile = path
	return r
}

// Override sets a value that wins over every other source. Empty strings
// are ignored so unset flags can be passed through unconditionally.
func (r *Resolver) Override(key string, value any) *Resolver {
	if s, ok := value.(string); ok && s == "" {
		return r
	}
	r.overrides[strings.ToLower(key)] = value
	return r
}

// Resolve merges every source and returns the settings.
func (r *Resolver) Resolve() (*Settings, error) {
	logger := logging.Get("config")

	v := viper.New()
	v.SetFs(r.fs)
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	if r.userFile != "" {
		ok, err := afero.Exists(r.fs, r.userFile)
		if err != nil {
			return nil, fmt.Errorf("checking user config: %w", err)
		}
		if ok {
			if err := mergeFile(v, r.fs, r.userFile); err != nil {
				return nil, err
			}
			logger.Debug().Str("file", r.userFile).Msg("loaded user config")
		}
	}

	if r.projectFile != "" {
		if err := mergeFile(v, r.fs, r.projectFile); err != nil {
			return nil, err
		}
		logger.Debug().Str("file", r.projectFile).Msg("loaded project config")
	}

	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for k, val := range r.overrides {
		v.Set(k, val)
	}

	return settingsFrom(v)
}

func mergeFile(v *viper.Viper, fs afero.Fs, path string) error {
	doc, err := LoadFile(fs, path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(doc); err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a config file and checks it against the config schema.
func LoadFile(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	doc, err := manifest.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := validate(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func validate(path string, doc map[string]any) error {
	result, err := manifest.ValidateDocument(manifest.SchemaConfig, doc)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("invalid config %s: %s", path, result.Summary())
	}
	return nil
}

func settingsFrom(v *viper.Viper) (*Settings, error) {
	t, err := templatetype.Parse(v.GetString(KeyTemplateType))
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, k := range v.AllKeys() {
		if strings.Contains(k, ".") || k == KeyTemplateDirs {
			continue
		}
		values[k] = v.GetString(k)
	}

	env := make(map[string]string)
	for _, k := range v.AllKeys() {
		if name, ok := strings.CutPrefix(k, KeyEnvVariables+"."); ok {
			env[strings.ToUpper(name)] = v.GetString(k)
		}
	}

	outputDir := v.GetString(KeyOutputDir)
	if outputDir == "" {
		return nil, errors.New("output directory must not be empty")
	}

	return &Settings{
		TemplateType: t,
		OutputDir:    outputDir,
		TemplateDirs: v.GetStringSlice(KeyTemplateDirs),
		Context:      render.NewContext(values, env),
		Values:       values,
		Env:          env,
	}, nil
}

// Get returns the value of key from defaults, the user config file and the
// environment.
func Get(fs afero.Fs, key string) (string, error) {
	s, err := NewResolver(fs).Resolve()
	if err != nil {
		return "", err
	}
	key = strings.ToLower(key)
	if name, ok := strings.CutPrefix(key, KeyEnvVariables+"."); ok {
		if val, ok := s.Env[strings.ToUpper(name)]; ok {
			return val, nil
		}
		return "", fmt.Errorf("unknown env variable %q", name)
	}
	if key == KeyTemplateDirs {
		return strings.Join(s.TemplateDirs, ","), nil
	}
	if val, ok := s.Values[key]; ok {
		return val, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set writes key to the user config file, creating it when needed. The
// resulting file must still satisfy the config schema. template_dirs takes
// a comma-separated list.
func Set(fs afero.Fs, key, value string) error {
	path := UserFile()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(path), err)
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if ok, _ := afero.Exists(fs, path); ok {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	key = strings.ToLower(key)
	var val any = value
	if key == KeyTemplateDirs {
		val = splitList(value)
	}
	v.Set(key, val)

	if err := validate(path, v.AllSettings()); err != nil {
		return err
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Keys returns the known setting names, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(Defaults()))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
