// Command mkint runs the integer-misuse analysis pass over a JSON-encoded
// IR module and prints its findings.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/pass"
	"github.com/ganler/mkint/internal/formatutil"
	"github.com/ganler/mkint/internal/functional"
	"github.com/ganler/mkint/ir"
	"github.com/ganler/mkint/ir/jsonir"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mkint", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file (sinks, source prefixes, iteration cap, policy switches)")
	logLevel := fs.Int("log-level", 0, "override the config's log level (1=error .. 5=trace)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mkint [-config path.yaml] module.json")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red("mkint: "+err.Error()))
		return 1
	}
	if *logLevel != 0 {
		cfg.LogLevel = *logLevel
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red("mkint: "+err.Error()))
		return 1
	}

	m, err := jsonir.Load(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red("mkint: "+err.Error()))
		return 1
	}

	s, err := pass.Run(m, cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red("mkint: "+err.Error()))
		return 1
	}

	count := printFindings(s.Module)
	if count == 0 {
		fmt.Println(formatutil.Green("no findings"))
		return 0
	}
	fmt.Printf("%s\n", formatutil.Yellow(fmt.Sprintf("%d finding(s)", count)))
	return 1
}

// printFindings prints every entity carrying an error-channel finding, in
// deterministic order by its string label (entities are pointers, so
// map iteration order is otherwise unspecified).
func printFindings(m *ir.Module) int {
	entities := m.Meta.Entities(ir.ErrorChannel)
	byLabel := make(map[string]any, len(entities))
	for _, e := range entities {
		byLabel[fmt.Sprint(e)] = e
	}
	labels := functional.SortedKeys(byLabel)
	for _, label := range labels {
		msg, _ := m.Meta.Get(ir.ErrorChannel, byLabel[label])
		fmt.Printf("%s: %s\n", formatutil.Bold(label), msg)
	}
	return len(labels)
}
