package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Load reads the yaml file at path into the config object.
func Load(path string, config interface{}) error {
	if path == "" {
		return errors.New("please setup the config file path")
	}

	configFile, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "fail to open config file")
	}

	defer configFile.Close()
	if err := yaml.NewDecoder(configFile).Decode(config); err != nil {
		return errors.Wrap(err, "fail to decode config file")
	}

	if d, ok := config.(interface{ SetDefaults() }); ok {
		d.SetDefaults()
	}

	return nil
}
