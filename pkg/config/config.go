// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/kardianos/osext"
	"github.com/luxfi/restorepoint/pkg/constants"
	"github.com/spf13/viper"
)

// Config is the effective configuration of one invocation.
type Config struct {
	BaseDir          string   `yaml:"base-dir"`
	SystemPaths      []string `yaml:"system-paths"`
	FullPaths        []string `yaml:"full-paths"`
	Exclude          []string `yaml:"exclude"`
	CompressionLevel int      `yaml:"compression-level"`
	TarPath          string   `yaml:"tar-path"`
	Progress         bool     `yaml:"progress"`
	Keep             int      `yaml:"keep"`

	// File is the config file that was read, empty when running on defaults.
	File string `yaml:"-"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(constants.ConfigBaseDir, constants.DefaultBaseDir)
	v.SetDefault(constants.ConfigSystemPaths, constants.DefaultSystemPaths)
	v.SetDefault(constants.ConfigFullPaths, constants.DefaultFullPaths)
	v.SetDefault(constants.ConfigExclude, []string{})
	v.SetDefault(constants.ConfigCompressionLevel, constants.DefaultCompressionLevel)
	v.SetDefault(constants.ConfigTarPath, constants.DefaultTarPath)
	v.SetDefault(constants.ConfigProgress, true)
	v.SetDefault(constants.ConfigKeep, constants.DefaultKeep)
}

// Load reads the config file (if any) and environment into a Config.
// A missing config file is not an error: most hosts run on defaults.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(constants.DefaultConfigDir)
		// a config next to the binary serves portable installs
		if dir, err := osext.ExecutableFolder(); err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName(constants.DefaultConfigFileName)
		v.SetConfigType(constants.DefaultConfigFileType)
	}
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, err
		}
	}
	conf := FromViper(v)
	conf.File = GetConfigPath(v)
	return conf, nil
}

// FromViper snapshots the current viper values.
func FromViper(v *viper.Viper) *Config {
	level := v.GetInt(constants.ConfigCompressionLevel)
	if level < 1 || level > 9 {
		level = constants.DefaultCompressionLevel
	}
	return &Config{
		BaseDir:          v.GetString(constants.ConfigBaseDir),
		SystemPaths:      v.GetStringSlice(constants.ConfigSystemPaths),
		FullPaths:        v.GetStringSlice(constants.ConfigFullPaths),
		Exclude:          v.GetStringSlice(constants.ConfigExclude),
		CompressionLevel: level,
		TarPath:          v.GetString(constants.ConfigTarPath),
		Progress:         v.GetBool(constants.ConfigProgress),
		Keep:             v.GetInt(constants.ConfigKeep),
	}
}

// GetConfigPath returns the path to the configuration file in use, if any
func GetConfigPath(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
