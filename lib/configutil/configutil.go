package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// readLayer parses one json5 file into out. Missing and empty files
// are reported through found=false rather than an error.
func readLayer[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads `name` (a json5 file, extension included) and,
// when a sibling `<name>.local.<ext>` exists, merges it on top. Local
// files stay out of version control, which is where the account
// password belongs. Returns os.ErrNotExist when neither file is
// present.
func ReadConfig[T any](name string) (T, error) {
	var out T

	ext := filepath.Ext(name)
	localName := name[:len(name)-len(ext)] + ".local" + ext

	foundDefault, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	var local T
	foundLocal, err := readLayer(localName, &local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, local, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localName)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for `name` in the working directory and every
// parent up to the filesystem root, reading the first match.
func ReadRecursively[T any](name string) (T, error) {
	var out T

	current, err := os.Getwd()
	if err != nil {
		return out, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return out, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return out, os.ErrNotExist
		}
		current = parent
	}
}
