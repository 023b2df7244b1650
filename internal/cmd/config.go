package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig holds flag defaults read from a YAML file. Credentials are
// deliberately absent; they only come from the environment.
type fileConfig struct {
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	File        string `yaml:"file"`
	ContentType string `yaml:"content_type"`
	Public      *bool  `yaml:"public"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &cfg, nil
}

// apply copies configured values into o for every flag the user did not set
// explicitly.
func (c *fileConfig) apply(cmd *cobra.Command, o *UploadOptions) {
	flags := cmd.Flags()
	set := func(name, value string, dst *string) {
		if value != "" && !flags.Changed(name) {
			*dst = value
		}
	}

	set("bucket", c.Bucket, &o.Bucket)
	set("prefix", c.Prefix, &o.Prefix)
	set("file", c.File, &o.File)
	set("content-type", c.ContentType, &o.ContentType)
	set("region", c.Region, &o.Region)
	set("endpoint", c.Endpoint, &o.Endpoint)

	if c.Public != nil && !flags.Changed("public") {
		o.Public = *c.Public
	}
}
