package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/pgerbes1/kfs/pkg/config"
	"github.com/pgerbes1/kfs/pkg/kfs"
	"github.com/pgerbes1/kfs/pkg/logger"
)

// tableConfig decodes recognized options from viper (config file,
// environment, or "-" prefixed flags) onto the package defaults.
func tableConfig() (config.Config, error) {
	var overrides config.Config
	if err := viper.Unmarshal(&overrides); err != nil {
		return config.Config{}, errors.Wrap(err, "decoding table configuration")
	}
	return config.Default().WithOverrides(overrides)
}

func openTable() (*kfs.Table, error) {
	cfg, err := tableConfig()
	if err != nil {
		return nil, err
	}
	l, err := logger.Get(logLevel)
	if err != nil {
		return nil, errors.Wrap(err, "constructing logger")
	}
	t, err := kfs.Open(afero.NewOsFs(), tableDir,
		kfs.WithConfig(cfg),
		kfs.WithLogger(l),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "opening table at %q", tableDir)
	}
	return t, nil
}
