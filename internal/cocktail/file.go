package cocktail

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// catalogFile is the on-disk shape of a cocktail list.
type catalogFile struct {
	Cocktails []*domain.Cocktail `yaml:"cocktails"`
}

// LoadFile reads a YAML cocktail list and returns a source serving it.
func LoadFile(path string, log *logger.Logger) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	list, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Info("cocktail catalog loaded from %s (%d entries)", path, len(list))
	return newSource(list, log), nil
}

// Parse decodes and validates a YAML cocktail list. Missing IDs are
// derived from the name.
func Parse(data []byte) ([]*domain.Cocktail, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if len(cf.Cocktails) == 0 {
		return nil, errors.New("no cocktails defined")
	}

	var errs []error
	seen := make(map[string]bool, len(cf.Cocktails))
	for i, c := range cf.Cocktails {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("cocktails[%d]: name is required", i))
			continue
		}
		if c.ID == "" {
			c.ID = slug(c.Name)
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("cocktails[%d]: duplicate id %q", i, c.ID))
		}
		seen[c.ID] = true

		if len(c.Ingredients) == 0 {
			errs = append(errs, fmt.Errorf("%s: no ingredients", c.ID))
		}
		for j, ing := range c.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: ingredients[%d]: name is required", c.ID, j))
			}
			if ing.VolumeOz <= 0 {
				errs = append(errs, fmt.Errorf("%s: ingredients[%d]: volume must be positive", c.ID, j))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cf.Cocktails, nil
}

func slug(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}
