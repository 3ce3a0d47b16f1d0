package main

import (
	"os"
	"path/filepath"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/merkle"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type Config struct {
	LogLevel         string `yaml:"log_level"`
	TreeHeight       int    `yaml:"tree_height"`
	Hasher           string `yaml:"hasher"`
	MaxNotes         int    `yaml:"max_notes"`
	ConsolidateBatch int    `yaml:"consolidate_batch"`
	VKDir            string `yaml:"vk_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		TreeHeight:       merkle.DefaultHeight,
		Hasher:           utils.HasherPoseidon,
		MaxNotes:         4,
		ConsolidateBatch: types.MaxConsolidateInputs,
		VKDir:            "vk",
	}
}

// LoadConfig reads the config at path. A missing file is created with the
// default values.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create config directory")
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.TreeHeight < 1 || c.TreeHeight > merkle.MaxHeight {
		return errors.Errorf("tree_height must be in [1, %d], got %d", merkle.MaxHeight, c.TreeHeight)
	}
	if _, err := utils.HasherByName(c.Hasher); err != nil {
		return err
	}
	if c.MaxNotes < 1 {
		return errors.Errorf("max_notes must be positive, got %d", c.MaxNotes)
	}
	if c.ConsolidateBatch < 2 || c.ConsolidateBatch > types.MaxConsolidateInputs {
		return errors.Errorf("consolidate_batch must be in [2, %d], got %d", types.MaxConsolidateInputs, c.ConsolidateBatch)
	}
	if c.VKDir == "" {
		return errors.New("vk_dir is empty")
	}
	return nil
}

func (c *Config) NewHasher() utils.Hasher {
	h, err := utils.HasherByName(c.Hasher)
	if err != nil {
		panic(err)
	}
	return h
}
