// Package config merges configuration files, env files and flag overrides
// into one flat key space. Nested keys are joined with "_", so
//
//	common:
//	  dialog_main: dialog.xml
//
// is looked up as common_dialog_main. Imported fragments read these keys
// through <replace> placeholders.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Well-known keys.
const (
	KeyDialogMain      = "common_dialog_main"
	KeySchema          = "common_schema"
	KeyOutputsDir      = "common_outputs_directory"
	KeyOutputsDialogs  = "common_outputs_dialogs"
	KeyOutputConfig    = "common_output_config"
	KeyVerbose         = "common_verbose"
	KeyCFNamespace     = "cloudfunctions_namespace"
	KeyCFPackage       = "cloudfunctions_package"
	KeyCFPathToActions = "cloudfunctions_path_to_actions"
)

// Settings is the typed view of the keys the CLI acts on.
type Settings struct {
	DialogMain     string `mapstructure:"common_dialog_main"`
	Schema         string `mapstructure:"common_schema"`
	OutputsDir     string `mapstructure:"common_outputs_directory"`
	OutputsDialogs string `mapstructure:"common_outputs_dialogs"`
	OutputConfig   string `mapstructure:"common_output_config"`
	Verbose        bool   `mapstructure:"common_verbose"`

	CFNamespace     string `mapstructure:"cloudfunctions_namespace"`
	CFUsername      string `mapstructure:"cloudfunctions_username"`
	CFPassword      string `mapstructure:"cloudfunctions_password"`
	CFPackage       string `mapstructure:"cloudfunctions_package"`
	CFPathToActions string `mapstructure:"cloudfunctions_path_to_actions"`

	Sink          string `mapstructure:"sink_type"`
	RedisAddr     string `mapstructure:"sink_redis_addr"`
	RedisPassword string `mapstructure:"sink_redis_password"`
	RedisDB       int    `mapstructure:"sink_redis_db"`
	RedisTTL      string `mapstructure:"sink_redis_ttl"`
	S3Endpoint    string `mapstructure:"sink_s3_endpoint"`
	S3Region      string `mapstructure:"sink_s3_region"`
	S3AccessKey   string `mapstructure:"sink_s3_access_key"`
	S3SecretKey   string `mapstructure:"sink_s3_secret_key"`
	S3Bucket      string `mapstructure:"sink_s3_bucket"`
	S3Prefix      string `mapstructure:"sink_s3_prefix"`
	S3UseSSL      bool   `mapstructure:"sink_s3_use_ssl"`
}

// Config is a flat, mutable key/value set. It implements ports.ConfigLookup
// and is safe for concurrent use.
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty configuration.
func New() *Config {
	return &Config{values: make(map[string]string)}
}

// Load reads the given YAML or JSON files in order. Later files override
// earlier ones.
func Load(paths ...string) (*Config, error) {
	cfg := New()
	for _, path := range paths {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadFile merges one configuration file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	flat := make(map[string]string)
	flatten("", raw, flat)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range flat {
		c.values[k] = v
	}
	return nil
}

// LoadEnv merges dotenv files. Keys are lower-cased.
func (c *Config) LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	env, err := godotenv.Read(paths...)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range env {
		c.values[strings.ToLower(k)] = v
	}
	return nil
}

func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(prefix, k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			flatten(join(prefix, fmt.Sprint(k)), child, out)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = v
	case bool:
		out[prefix] = strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// Set overrides a key. Empty values are ignored so unset flags never clobber
// file values.
func (c *Config) Set(key, value string) {
	if value == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the value of name. The derived cloudfunctions_path_to_actions
// is available whenever namespace and package are both set.
func (c *Config) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[name]; ok {
		return v, true
	}
	if name == KeyCFPathToActions {
		return c.pathToActions()
	}
	return "", false
}

func (c *Config) pathToActions() (string, bool) {
	ns, okNS := c.values[KeyCFNamespace]
	pkg, okPkg := c.values[KeyCFPackage]
	if !okNS || !okPkg {
		return "", false
	}
	path := strings.Trim(strings.Trim(ns, "/")+"/"+strings.Trim(pkg, "/"), "/")
	return "/" + path + "/", true
}

// Keys returns the configured keys in sorted order.
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.values)+1)
	for k, v := range c.values {
		out[k] = v
	}
	if _, ok := out[KeyCFPathToActions]; !ok {
		if v, ok := c.pathToActions(); ok {
			out[KeyCFPathToActions] = v
		}
	}
	return out
}

// Settings decodes the typed view. Values are weakly typed, so "true" and
// "1" both set a bool.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	if err := decoder.Decode(c.snapshot()); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// Save writes the merged configuration, derived keys included, as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c.snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
