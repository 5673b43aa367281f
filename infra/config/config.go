package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/drakos74/mall-segment/internal/storage"
	"github.com/rs/zerolog/log"
)

// Load loads the json config at the given file into v.
func Load(file string, v interface{}) error {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no config at '%s': %w", file, storage.NotFoundErr)
		}
		return fmt.Errorf("could not read config '%s': %w", file, err)
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("could not unmarshal the config '%s': %v: %w", file, err, storage.CouldNotLoadErr)
	}

	log.Info().Str("config", file).Msg("loaded config")
	return nil
}
