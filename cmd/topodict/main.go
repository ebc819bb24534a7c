/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suparena/topobind"
	"github.com/suparena/topobind/attribute"
	"github.com/suparena/topobind/config"
	"github.com/suparena/topobind/host"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/kernel/arena"
	"github.com/suparena/topobind/topology"
)

const usage = `usage: topodict [flags] <command> [args]

commands:
  eval FILE   run a script and print its result
  dump        print every stored dictionary

flags:
`

func main() {
	fs := flag.NewFlagSet("topodict", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	versionFlag := fs.Bool("version", false, "Show version information")
	vFlag := fs.Bool("v", false, "Show version information (short)")
	configPath := fs.String("config", "", "YAML configuration file")
	_ = fs.Parse(os.Args[1:])

	if *versionFlag || *vFlag {
		info := topobind.GetVersionInfo()
		fmt.Printf("topodict version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "topodict: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyTrace()

	if err := run(context.Background(), cfg, fs.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "topodict: %v\n", err)
		if err == errUsage {
			fs.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = fmt.Errorf("missing or unknown command")

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	ds, err := cfg.NewDataStore(ctx)
	if err != nil {
		return err
	}
	k := arena.New()
	s, err := topobind.New(k, ds)
	if err != nil {
		return err
	}

	switch args[0] {
	case "eval":
		if len(args) != 2 {
			return errUsage
		}
		return evalFile(ctx, s, k, args[1], out)
	case "dump":
		return dump(ctx, s, out)
	}
	return errUsage
}

func evalFile(ctx context.Context, s *topobind.Session, k *arena.Kernel, path string, out io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h, err := host.New(s, k)
	if err != nil {
		return err
	}
	v, evalErrs, err := h.Evaluate(ctx, string(src))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = fmt.Sprintf("%s: %s", path, e)
		}
		return fmt.Errorf("%s", strings.Join(msgs, "\n"))
	}
	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return enc.Encode(render(v))
}

// render replaces topologies by a printable form.
func render(v any) any {
	switch x := v.(type) {
	case topology.Topology:
		return map[string]string{"kind": x.Kind().String(), "id": x.ID().String()}
	case []any:
		r := make([]any, len(x))
		for i, it := range x {
			r[i] = render(it)
		}
		return r
	}
	return v
}

type dumpRecord struct {
	ShapeID    string         `yaml:"shapeId"`
	Attributes map[string]any `yaml:"attributes"`
}

func dump(ctx context.Context, s *topobind.Session, out io.Writer) error {
	enc := yaml.NewEncoder(out)
	defer enc.Close()
	return s.Store().Each(ctx, func(id kernel.ShapeID, attrs map[string]attribute.Attribute) error {
		m, err := s.Attributes().UnwrapAll(attrs)
		if err != nil {
			return err
		}
		return enc.Encode(dumpRecord{ShapeID: id.String(), Attributes: m})
	})
}
