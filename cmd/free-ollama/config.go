package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// yamlConfig resolves flags from a YAML document. A flag such as
// probe.timeout may be written flat ("probe.timeout: 5s") or nested
// ("probe: {timeout: 5s}"). Dashes in flag names may be written as
// underscores.
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}

	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode yaml config: %w", err)
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, name := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if raw, ok := lookup(values, name); ok {
				return normalize(raw), nil
			}
		}

		return nil, nil
	}

	return f, nil
}

func lookup(values map[string]any, name string) (any, bool) {
	if raw, ok := values[name]; ok {
		return raw, true
	}

	head, rest, found := strings.Cut(name, ".")
	if !found {
		return nil, false
	}

	nested, ok := values[head].(map[string]any)
	if !ok {
		return nil, false
	}

	return lookup(nested, rest)
}

// normalize turns YAML scalars into strings kong can map onto any flag type.
func normalize(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}

		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
