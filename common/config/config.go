package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sunthewhat/easy-cert-batch/common"
	"github.com/sunthewhat/easy-cert-batch/common/util"
	"github.com/sunthewhat/easy-cert-batch/type/shared"
	"gopkg.in/yaml.v3"
)

func LoadConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}

	config, err := Parse(path)
	if err != nil {
		slog.Error("Failed to load config", "path", path, "error", err)
		os.Exit(1)
	}

	common.Config = config
}

// Parse reads and validates a yaml config file without touching the global config.
func Parse(path string) (*shared.Config, error) {
	config := new(shared.Config)

	yml, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
	}

	if unmarshalErr := yaml.Unmarshal(yml, config); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, unmarshalErr)
	}

	if validateErr := util.ValidateStruct(config); validateErr != nil {
		return nil, fmt.Errorf("invalid %s: %v", path, util.GetValidationErrors(validateErr))
	}

	return config, nil
}
