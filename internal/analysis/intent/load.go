package intent

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadTables reads keyword overrides from a TOML file. Sections absent from the
// file keep their built-in values.
func LoadTables(path string) (Tables, error) {
	var tables Tables
	if _, err := toml.DecodeFile(path, &tables); err != nil {
		return Tables{}, fmt.Errorf("decode keyword file %s: %w", path, err)
	}
	return tables, nil
}
