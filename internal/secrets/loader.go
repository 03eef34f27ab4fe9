package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when a source names no usable secret.
var ErrNotConfigured = errors.New("not configured")

// Source lists the places a secret may come from. File is tried first, then
// Env, then the inline Value.
type Source struct {
	// Name labels the secret in errors, e.g. "serper api key".
	Name  string
	Value string
	File  string
	Env   string
}

// Load returns the resolved and trimmed secret. An error wrapping
// ErrNotConfigured is returned when no source yields a value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if path := strings.TrimSpace(src.File); path != "" {
		return fromFile(name, path)
	}
	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}
	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}
	return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
}

// LoadOptional is Load for secrets that only enable extra features. A missing
// secret yields an empty string. Unreadable files are still errors.
func LoadOptional(src Source) (string, error) {
	secret, err := Load(src)
	if errors.Is(err, ErrNotConfigured) {
		return "", nil
	}
	return secret, err
}

func fromFile(name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s file: %w", name, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name, path)
	}
	return secret, nil
}
