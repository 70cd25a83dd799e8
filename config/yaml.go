// Package config loads flag defaults from YAML files.
//
// Top-level keys set global flags. A mapping named after a command sets the
// flags of that command and takes precedence:
//
//	workers: 4
//	log-level: debug
//	hide:
//	  payload-format: png
//	  verify: true
//
// Keys may use dashes or underscores.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse YAML configuration: %w", err)
	}

	var resolver kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if cmd := kctx.Selected(); cmd != nil {
			if section, ok := values[cmd.Name].(map[string]any); ok {
				if v, ok := lookup(section, flag.Name); ok {
					return v, nil
				}
			}
		}

		if v, ok := lookup(values, flag.Name); ok {
			if _, isSection := v.(map[string]any); !isSection {
				return v, nil
			}
		}
		return nil, nil
	}
	return resolver, nil
}

func lookup(values map[string]any, name string) (any, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	v, ok := values[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}
