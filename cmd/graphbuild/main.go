// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-jit-tools/compiler/builder"
	"github.com/awslabs/ar-jit-tools/compiler/canon"
	"github.com/awslabs/ar-jit-tools/compiler/config"
	"github.com/awslabs/ar-jit-tools/compiler/ir"
	"github.com/awslabs/ar-jit-tools/internal/formatutil"
	"github.com/awslabs/ar-jit-tools/internal/funcutil"
	"github.com/awslabs/ar-jit-tools/internal/graphutil"
	"github.com/awslabs/ar-jit-tools/internal/metatest"
)

// flags

var (
	configPath = ""
	methodName = ""
	topo       = false
)

func init() {
	flag.StringVar(&configPath, "config", "", "config file path")
	flag.StringVar(&methodName, "method", "", "build only the named Type.method")
	flag.BoolVar(&topo, "topo", false, "list nodes in dependency order instead of insertion order")
}

const usage = `Build and canonicalize value graphs from textual method listings.

Usage:
  graphbuild [-config config.yaml] [-method Type.method] listing...

Each listing file declares a type hierarchy and one or more method bodies,
e.g.:

  type Animal Object
  method Example.test boolean (object) {
      stamp 0 Animal
      0: load 0 object
      1: instanceof Animal
      2: return boolean
  }

Use the -help flag to display the options.
`

func main() {
	if err := doMain(); err != nil {
		fmt.Fprintf(os.Stderr, "graphbuild: %s\n", err)
		os.Exit(1)
	}
}

func doMain() error {
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var cfg *config.Config
	if configPath != "" {
		config.SetGlobalConfig(configPath)
		c, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = config.NewDefault()
	}
	logger := config.NewLogGroup(cfg)

	for _, path := range flag.Args() {
		if err := buildFile(cfg, logger, path); err != nil {
			return err
		}
	}
	return nil
}

func buildFile(cfg *config.Config, logger *config.LogGroup, path string) error {
	fmt.Fprintln(os.Stderr, formatutil.Faint("Reading "+path))

	pr, err := loadProgram(path)
	if err != nil {
		return err
	}

	assumptions := &metatest.Assumptions{}
	oracles := builder.Oracles{
		Stamps:      pr.stamps,
		Meta:        pr.universe,
		Assumptions: assumptions,
		Constants:   metatest.Constants{},
		Snippets:    metatest.Snippets{},
	}
	b := builder.NewBuilder(cfg, logger, oracles, pr)
	pass := canon.NewPass(logger, assumptions, metatest.Constants{})

	set := map[string]bool{}
	for q := range pr.bodies {
		set[q] = true
	}
	for _, qualified := range funcutil.SetToOrderedSlice(set) {
		if methodName != "" && qualified != methodName {
			continue
		}
		method, err := pr.universe.LookupMethod(qualified)
		if err != nil {
			return err
		}
		g, err := b.Build(method)
		if err != nil {
			var bailout *builder.BailoutError
			if errors.As(err, &bailout) {
				fmt.Fprintln(os.Stderr, formatutil.Yellow(bailout.Error()))
				continue
			}
			return err
		}
		replaced := pass.Run(g)
		if replaced > 0 {
			logger.Infof("%s: canonicalized %d node(s)", qualified, replaced)
		}
		if err := report(cfg, g); err != nil {
			return err
		}
		if err := print(g); err != nil {
			return err
		}
	}
	return nil
}

// print writes the graph listing to stdout, either in admission order or,
// with -topo, with every node after its inputs.
func print(g *ir.Graph) error {
	if !topo {
		return ir.Fprint(os.Stdout, g)
	}
	order, err := graphutil.TopoOrder(g)
	if err != nil {
		return err
	}
	lines := funcutil.Map(order, func(n ir.Node) string {
		return fmt.Sprintf("  v%-3d = %s", n.ID(), n.String())
	})
	fmt.Printf("graph %s\n%s\n", formatutil.Bold(g.Method().Qualified()), strings.Join(lines, "\n"))
	return nil
}

// report dumps the final listing into the configured reports directory.
func report(cfg *config.Config, g *ir.Graph) error {
	if !cfg.ReportGraphs {
		return nil
	}
	name := fmt.Sprintf("%.8s.graph", g.UnitID)
	path, err := cfg.ReportPath(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ir.Sprint(g)), 0o600)
}
