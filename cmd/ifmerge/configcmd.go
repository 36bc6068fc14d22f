package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-ifmerge/internal/config"
	"github.com/alnah/go-ifmerge/internal/yamlutil"
)

// runConfig handles the config command: print the effective configuration
// (file, environment and defaults combined) as YAML.
// With "paths" as argument it lists where a config name is searched.
func runConfig(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	if len(positional) > 0 {
		if positional[0] != "paths" || len(positional) > 2 {
			printConfigUsage(env.Stderr)
			return fmt.Errorf("%w: unknown config argument %q", ErrUsage, positional[0])
		}
		name := "ifmerge"
		if len(positional) == 2 {
			name = positional[1]
		}
		for _, p := range config.SearchPaths(name) {
			fmt.Fprintln(env.Stdout, p)
		}
		return nil
	}

	cfg, source, err := loadConfig(flags.config, env)
	if err != nil {
		return err
	}

	data, err := yamlutil.Encode(cfg)
	if err != nil {
		return err
	}

	if !flags.quiet {
		if source == "" {
			source = "defaults"
		}
		fmt.Fprintf(env.Stdout, "# source: %s\n", source)
	}
	_, err = env.Stdout.Write(data)
	return err
}
