// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the configuration of a log's submission front end.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/certingest/chain"
	"gopkg.in/yaml.v2"
)

// DefaultWorkers is the number of submissions checked concurrently when
// LogConfig.Workers is not set.
const DefaultWorkers = 4

// LogConfig describes the configuration options for a log instance.
type LogConfig struct {
	// Prefix identifies the log in diagnostics and metrics.
	Prefix string `yaml:"prefix"`
	// RootsPEMFiles lists the files holding the trust anchors.
	RootsPEMFiles []string `yaml:"roots_pem_files"`
	// RejectExpired rejects chains holding a certificate outside its
	// validity window.
	RejectExpired bool `yaml:"reject_expired"`
	// MaxChainLength is the maximum number of certificates in a submission.
	MaxChainLength int `yaml:"max_chain_length"`
	// Workers is the number of submissions checked concurrently.
	Workers int `yaml:"workers"`
}

// LogConfigFromFile reads a LogConfig from the given filename, which should
// contain YAML encoded configuration data. Unset fields get their defaults.
func LogConfigFromFile(filename string) (*LogConfig, error) {
	if len(filename) == 0 {
		return nil, errors.New("log config filename empty")
	}
	cfgData, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read log config: %v", err)
	}
	return Parse(cfgData)
}

// Parse decodes YAML configuration data. Unknown fields are rejected.
func Parse(data []byte) (*LogConfig, error) {
	var cfg LogConfig
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config data: %v", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills in unset optional fields.
func (c *LogConfig) SetDefaults() {
	if c.MaxChainLength == 0 {
		c.MaxChainLength = chain.DefaultMaxLength
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks that the configuration can be used.
func (c *LogConfig) Validate() error {
	if len(c.RootsPEMFiles) == 0 {
		return errors.New("need to specify roots_pem_files")
	}
	for i, f := range c.RootsPEMFiles {
		if len(f) == 0 {
			return fmt.Errorf("roots_pem_files[%d] is empty", i)
		}
	}
	if c.MaxChainLength < 1 {
		return fmt.Errorf("max_chain_length %d must be positive", c.MaxChainLength)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d must be positive", c.Workers)
	}
	return nil
}

// ValidatorOptions returns the chain validation options the config selects.
func (c *LogConfig) ValidatorOptions() chain.Options {
	return chain.Options{
		CheckValidity: c.RejectExpired,
		MaxLength:     c.MaxChainLength,
	}
}
