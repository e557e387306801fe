package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/cli"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/config"
	"github.com/carl-lang/carl/pkg/funcs"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/lexer"
	"github.com/carl-lang/carl/pkg/parser"
	"github.com/carl-lang/carl/pkg/rule"
	"github.com/carl-lang/carl/pkg/util"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("carlc")

func main() {
	app := cli.NewApp("carlc")
	app.Synopsis = "[options] <rule.carl> ..."
	app.Description = "Compiles cellular-automaton rule files to native code and runs their transition functions in-process."
	app.Repository = "https://github.com/carl-lang/carl"

	var (
		ruleDir   string
		dumpIR    bool
		optLevel  int
		verbosity int
		warnArgs  []string
	)

	fs := app.FlagSet
	fs.String(&ruleDir, "rule-dir", "C", ".", "Directory holding the carl.toml manifest.", "dir")
	fs.Bool(&dumpIR, "dump-ir", "d", false, "Print the generated IR instead of running.")
	fs.Int(&optLevel, "opt", "O", 2, "Set the backend optimization level (0-3).", "level")
	fs.Int(&verbosity, "verbose", "v", 0, "Increase log verbosity.", "level")
	fs.Special(&warnArgs, "W", "Toggle a warning (e.g. -Wno-const-overflow, -Wall)", "warning")

	cfg := config.NewConfig()
	fs.AddGroup(warningGroup(cfg))

	app.Action = func(inputFiles []string) error {
		commonlog.Configure(verbosity, nil)

		if len(inputFiles) == 0 {
			return fmt.Errorf("no input files specified")
		}
		cfg.OptLevel = optLevel
		cfg.DumpIR = dumpIR

		manifest, err := rule.Load(ruleDir)
		if err != nil {
			return err
		}
		for name, enabled := range manifest.Warnings {
			if wt, ok := cfg.WarningMap[name]; ok {
				cfg.SetWarning(wt, enabled)
			} else {
				log.Warningf("manifest toggles unknown warning %q", name)
			}
		}
		meta := manifest.Meta()
		log.Infof("rule %q: %d states, %dD, radius %d", meta.Name, meta.States, meta.Dimensions, meta.Radius)

		records, sources, err := readFiles(inputFiles)
		if err != nil {
			return err
		}
		util.SetSourceFiles(records)

		worker := compiler.NewWorker()
		defer worker.Dispose()
		cache := compiler.NewCache()
		defer cache.Dispose()

		for i, path := range inputFiles {
			if err := compileAndRun(cfg, meta, worker, cache, path, sources[i], i); err != nil {
				return err
			}
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// warningGroup wires the -W prefix to the config's warning toggles.
func warningGroup(cfg *config.Config) *cli.Group {
	var entries []cli.GroupEntry
	for i := config.Warning(0); i < config.WarnCount; i++ {
		info := cfg.Warnings[i]
		entries = append(entries, cli.GroupEntry{Name: info.Name, Usage: info.Description, Default: info.Enabled})
	}
	return &cli.Group{
		Name:    "Warnings",
		Prefix:  "W",
		Entries: entries,
		Set: func(name string, enabled bool) error {
			if name == "all" {
				cfg.SetAllWarnings(enabled)
				return nil
			}
			wt, ok := cfg.WarningMap[name]
			if !ok {
				return fmt.Errorf("unknown warning: %s", name)
			}
			cfg.SetWarning(wt, enabled)
			return nil
		},
	}
}

func readFiles(paths []string) ([]util.SourceFileRecord, []string, error) {
	records := make([]util.SourceFileRecord, len(paths))
	sources := make([]string, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		sources[i] = string(data)
		records[i] = util.SourceFileRecord{Name: path, Content: []rune(sources[i])}
	}
	return records, sources, nil
}

// functionName derives the symbol name of a file's transition function.
func functionName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var sb strings.Builder
	sb.WriteString("transition_")
	for _, r := range base {
		if r == '-' || r == ' ' || r == '.' {
			r = '_'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// compileAndRun takes one rule file through the whole pipeline: lex, parse,
// build, compile, then either dump the IR or invoke the transition function
// once and report its result.
func compileAndRun(cfg *config.Config, meta *rule.Meta, worker *compiler.Worker, cache *compiler.Cache, path, source string, fileIndex int) error {
	name := functionName(path)
	key := compiler.Key(name, source)
	if compiled, ok := cache.Get(key); ok && !cfg.DumpIR {
		log.Debugf("%s: using cached function", path)
		return runFunction(path, compiled)
	}

	tokens, err := lexer.Tokenize(source, fileIndex)
	if err != nil {
		return reportError(err)
	}
	stmts, err := parser.NewParser(tokens).ParseBlock()
	if err != nil {
		return reportError(err)
	}

	fn := ast.NewTransitionFunction(meta, funcs.NewRegistry())
	if err := fn.BuildBody(stmts); err != nil {
		return reportError(err)
	}
	util.PrintWarnings(cfg, fn.Warnings())

	c := compiler.New(worker, cfg, name)
	if err := fn.CompileBody(c, name); err != nil {
		return reportError(err)
	}
	if cfg.DumpIR {
		fmt.Print(c.IR())
		return nil
	}

	compiled, err := compiler.Finish(c, name, fn.ReturnType(), fn.ErrorPoints())
	if err != nil {
		return reportError(err)
	}
	cache.Put(key, compiled)
	log.Debugf("%s: compiled %s (%d error points)", path, name, len(fn.ErrorPoints()))
	return runFunction(path, compiled)
}

func runFunction(path string, compiled *compiler.CompiledFunction) error {
	result := compiled.Call()
	if !result.Ok() {
		util.PrintError(result.Err)
		return result.Err
	}
	fmt.Printf("%s: %s\n", path, result.Value)
	return nil
}

func reportError(err error) error {
	var lerr *lang.Error
	if !errors.As(err, &lerr) {
		lerr = lang.Internal(lang.NoSpan, err.Error())
	}
	util.PrintError(lerr)
	return err
}
