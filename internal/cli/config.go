// Config loading for the rulestore CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rulestore/internal/paths"
	"github.com/mesh-intelligence/rulestore/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "RULESTORE"

	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyListenAddr = "listen_addr"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogPretty  = "log_pretty"
	cfgKeyClientID   = "client_id"

	defaultListenAddr = "127.0.0.1:8080"
	defaultLogLevel   = "info"
)

// envKeys may be overridden by RULESTORE_<KEY>. data_dir is resolved by
// internal/paths so that config.yaml wins over the environment.
var envKeys = []string{cfgKeyBackend, cfgKeyListenAddr, cfgKeyLogLevel, cfgKeyLogPretty, cfgKeyClientID}

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogPretty  bool   `yaml:"log_pretty"`
	ClientID   string `yaml:"client_id"`
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir, ""); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogPretty, false)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes config.yaml with defaults and a fresh
// client id if the file does not exist. An existing file is left alone.
func ensureDefaultConfigFile(configDir, dataDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate client id: %w", err)
	}
	cfg := configFile{
		Backend:    types.BackendSQLite,
		DataDir:    dataDir,
		ListenAddr: defaultListenAddr,
		LogLevel:   defaultLogLevel,
		ClientID:   id.String(),
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
