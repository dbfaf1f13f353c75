// Command bplutil is a small CLI over the bplist codec: dump a binary
// property list as a Go value tree, or generate one from a YAML
// description. Grounded on the teacher's cmd/experimental/plait/plait.go
// (format dispatch, bail(err)-and-exit idiom), reworked from a WASM/JS
// shim into a go-flags subcommand CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/bplist00/bplist"
	"github.com/bplist00/bplist/internal/diag"
)

type config struct {
	Indent string `yaml:"indent"`
}

type options struct {
	Verbose bool   `short:"v" long:"verbose" description:"trace parse/generate decisions to stderr"`
	Config  string `long:"config" description:"path to a YAML config file" default:".bplutil.yaml"`

	Args struct {
		Command string `positional-arg-name:"command" description:"dump|gen"`
		File    string `positional-arg-name:"file"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(opts.Config)

	var tr *diag.Tracer
	if opts.Verbose {
		tr = diag.New(os.Stderr, zerolog.DebugLevel)
	}

	var err error
	switch opts.Args.Command {
	case "dump":
		err = dump(opts.Args.File, tr)
	case "gen":
		err = generate(opts.Args.File, cfg, tr)
	default:
		err = fmt.Errorf("unknown command %q (want dump|gen)", opts.Args.Command)
	}
	if err != nil {
		bail(err)
	}
}

func loadConfig(path string) config {
	cfg := config{Indent: "  "}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		bail(fmt.Errorf("parsing %s: %w", path, err))
	}
	return cfg
}

func dump(path string, tr *diag.Tracer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	v, err := bplist.ParseTrace(data, tr)
	if err != nil {
		return err
	}

	fmt.Println(pretty.Sprint(v))
	return nil
}

// generate reads a YAML-described value tree and emits its bplist
// encoding to stdout. YAML maps/sequences/scalars decode via yaml.v2 into
// plain Go interface{} values (map[interface{}]interface{},
// []interface{}, string, int, float64, bool); toValue turns mappings into
// *bplist.Dict and passes everything else through. There is no YAML form
// for UID or Date, so those kinds cannot be produced from a YAML file.
func generate(path string, cfg config, tr *diag.Tracer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	v := toValue(raw)
	out, err := bplist.GenerateTrace(v, tr)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(out)
	return err
}

// toValue converts yaml.v2's generic decode result (map[interface{}]interface{}
// for mappings) into the shapes bplist.Generate accepts (*bplist.Dict for
// dictionaries).
func toValue(raw interface{}) interface{} {
	switch v := raw.(type) {
	case map[interface{}]interface{}:
		d := bplist.Dict{}
		for k, val := range v {
			d.Set(toValue(k), toValue(val))
		}
		return &d
	case []interface{}:
		arr := make([]interface{}, len(v))
		for i, e := range v {
			arr[i] = toValue(e)
		}
		return arr
	default:
		return v
	}
}

func bail(err error) {
	fmt.Fprintln(os.Stderr, "bplutil:", err)
	os.Exit(1)
}
