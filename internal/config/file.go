package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// fileValues holds the parsed optional config file.
type fileValues struct {
	v *viper.Viper
}

// readFile loads the optional YAML config file. A file named by CONFIG_FILE
// must exist and parse; the default search locations may simply be absent.
func readFile() (*fileValues, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading CONFIG_FILE: %w", err)
		}

		return &fileValues{v: v}, nil
	}

	v.SetConfigName("corral")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/corral")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return &fileValues{v: v}, nil
}

// get returns the environment value when set, then the file value, then the
// fallback.
func (f *fileValues) get(env, key, fallback string) string {
	if val := os.Getenv(env); val != "" {
		return val
	}

	if f.v.IsSet(key) {
		return f.v.GetString(key)
	}

	return fallback
}
