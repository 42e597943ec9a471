// Package main provides the CLI entrypoint for dto-generator.
//
// dto-generator prints a populated sample order from the examples/shop package:
//   - Loads generation limits from a YAML file (-config) or the process defaults
//   - Generates the order with the selected groups and failure policy
//   - Prints it as YAML or JSON, and the per-field errors on stderr
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivalitov/dto-generator-sub003/engine"
	"github.com/ivalitov/dto-generator-sub003/examples/shop"
	"github.com/ivalitov/dto-generator-sub003/generator"
	"github.com/ivalitov/dto-generator-sub003/options"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dto-generator", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML file with generation limits")
	seed := fs.Uint64("seed", 0, "seed for reproducible output, 0 draws a random one")
	groups := fs.String("groups", "", "comma separated field groups to activate")
	failFast := fs.Bool("fail-fast", false, "abort on the first field failure")
	format := fs.String("format", "yaml", "output format: yaml or json")
	verbose := fs.Bool("v", false, "log generation details")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	opts := []engine.Option{
		engine.WithConfig(cfg),
		engine.WithRegistry(shop.Register(generator.NewRegistry())),
		engine.WithLogger(logger),
	}

	if *seed != 0 {
		opts = append(opts, engine.WithSeed(*seed))
	}

	if *groups != "" {
		opts = append(opts, engine.WithGroups(strings.Split(*groups, ",")...))
	}

	if *failFast {
		opts = append(opts, engine.WithPolicy(engine.FailFast))
	}

	order, errs, err := engine.Generate[shop.Order](opts...)
	if err != nil {
		logger.Error("generation aborted", "error", err)
		return 1
	}

	if err := write(stdout, *format, order); err != nil {
		logger.Error("failed to write order", "error", err)
		return 1
	}

	if errs.HasErrors() {
		fmt.Fprint(stderr, errs.String())
	}

	return 0
}

func loadConfig(path string) (options.Config, error) {
	if path == "" {
		return options.Process()
	}

	return options.LoadFile(path)
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
