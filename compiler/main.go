package main

import (
	"errors"
	"os"
	"strings"

	"github.com/ComedicChimera/olive"
	"github.com/xiaobogaga/djc/compiler/internal"
	"github.com/xiaobogaga/djc/dism"
)

const version = "0.1.0"

// Exit statuses.
const (
	exitOK = iota
	exitSemanticError
	exitInternalError
	exitUsageError
	exitRuntimeError
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cli := olive.NewCLI("djc", "djc type checks DJ programs and compiles them to DISM", true)
	// Without -ll the config file's level stays.
	cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, internal.LogLevelNames)

	buildCmd := cli.AddSubcommand("build", "compile a parsed DJ tree to DISM", true)
	buildCmd.AddPrimaryArg("tree-path", "the YAML tree written by the DJ parser", true)
	buildCmd.AddStringArg("output", "o", "the DISM output path", false)
	buildCmd.AddStringArg("config", "c", "the path to a djc.toml config file", false)
	buildCmd.AddFlag("strip-comments", "s", "omit comments from the generated code")
	buildCmd.AddFlag("widening", "w", "treat nat and object types as subtypes of each other")

	checkCmd := cli.AddSubcommand("check", "type check a parsed DJ tree", true)
	checkCmd.AddPrimaryArg("tree-path", "the YAML tree written by the DJ parser", true)
	checkCmd.AddStringArg("config", "c", "the path to a djc.toml config file", false)
	checkCmd.AddFlag("widening", "w", "treat nat and object types as subtypes of each other")

	runCmd := cli.AddSubcommand("run", "compile a tree if needed and run it on the DISM simulator", true)
	runCmd.AddPrimaryArg("path", "a YAML tree or a .dism program", true)
	runCmd.AddStringArg("config", "c", "the path to a djc.toml config file", false)

	cli.AddSubcommand("version", "print the djc version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		internal.PrintErrorMessage("CLI Usage Error", err)
		return exitUsageError
	}

	subcmdName, subResult, _ := result.Subcommand()
	if subcmdName == "version" {
		internal.PrintInfoMessage("djc Version", version)
		return exitOK
	}
	loglevel, hasLoglevel := result.Arguments["loglevel"]
	cfg, log, status := setup(subResult, loglevel, hasLoglevel)
	if status != exitOK {
		return status
	}
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult, cfg, log)
	case "check":
		return execCheckCommand(subResult, cfg, log)
	case "run":
		return execRunCommand(subResult, cfg, log)
	}
	return exitUsageError
}

// setup loads the config file, lets the CLI override it and builds the logger.
func setup(result *olive.ArgParseResult, loglevel interface{}, hasLoglevel bool) (*internal.Config, *internal.Logger,
	int) {
	configPath := ""
	if value, ok := result.Arguments["config"]; ok {
		configPath = value.(string)
	}
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		internal.PrintErrorMessage("Config Error", err)
		return nil, nil, exitUsageError
	}
	if result.HasFlag("widening") {
		cfg.Compiler.NatObjectWidening = true
	}
	if result.HasFlag("strip-comments") {
		cfg.Output.StripComments = true
	}
	if value, ok := result.Arguments["output"]; ok {
		cfg.Output.Path = value.(string)
	}
	overrideLogLevel(cfg, loglevel, hasLoglevel)
	log, err := internal.NewLogger(cfg.Compiler.LogLevel, os.Stdout)
	if err != nil {
		internal.PrintErrorMessage("Config Error", err)
		return nil, nil, exitUsageError
	}
	return cfg, log, exitOK
}

// overrideLogLevel applies -ll when it was given on the command line.
func overrideLogLevel(cfg *internal.Config, loglevel interface{}, hasLoglevel bool) {
	if !hasLoglevel {
		return
	}
	if name, ok := loglevel.(string); ok {
		cfg.Compiler.LogLevel = name
	}
}

func execBuildCommand(result *olive.ArgParseResult, cfg *internal.Config, log *internal.Logger) int {
	treePath, _ := result.PrimaryArg()
	_, err := internal.NewCompiler(cfg, log).Compile(treePath)
	return reportCompileError(log, err)
}

func execCheckCommand(result *olive.ArgParseResult, cfg *internal.Config, log *internal.Logger) int {
	treePath, _ := result.PrimaryArg()
	root, err := internal.LoadTreeFile(treePath)
	if err != nil {
		return reportCompileError(log, err)
	}
	_, err = internal.NewCompiler(cfg, log).CheckTree(root)
	if err == nil {
		log.Success("Checked", treePath)
	}
	return reportCompileError(log, err)
}

func execRunCommand(result *olive.ArgParseResult, cfg *internal.Config, log *internal.Logger) int {
	path, _ := result.PrimaryArg()
	if !strings.HasSuffix(path, ".dism") {
		var err error
		path, err = internal.NewCompiler(cfg, log).Compile(path)
		if status := reportCompileError(log, err); status != exitOK {
			return status
		}
	}
	f, err := os.Open(path)
	if err != nil {
		log.Error("Path Error", err)
		return exitUsageError
	}
	defer f.Close()
	res, err := dism.RunProgram(f, cfg.Machine.MaxAddress, cfg.Machine.MaxSteps, os.Stdin, os.Stdout)
	if err != nil {
		log.Error("Runtime Error", err)
		return exitRuntimeError
	}
	if res.ExitCode != 0 {
		log.Warn("Halted", internal.HaltMessage(res.ExitCode))
		return exitRuntimeError
	}
	return exitOK
}

func reportCompileError(log *internal.Logger, err error) int {
	if err == nil {
		return exitOK
	}
	var semanticErr *internal.SemanticError
	if errors.As(err, &semanticErr) {
		log.Error("Semantic Error", err)
		return exitSemanticError
	}
	var internalErr *internal.InternalError
	if errors.As(err, &internalErr) {
		log.Error("Internal Error", err)
		return exitInternalError
	}
	log.Error("Error", err)
	return exitUsageError
}
