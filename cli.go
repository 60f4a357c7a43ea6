package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `Jive - A small imperative language that compiles to x86-64 assembly

Usage:
    jive <command> [arguments]

Commands:
    build <file>    Compile a .jive file to NASM assembly
    run <file>      Compile, assemble, link and execute a .jive file
    check <file>    Parse and check a .jive file without writing output
    ir <file>       Print the stack-machine IR of a .jive file
    ast <file>      Print the syntax tree of a .jive file
    help            Show this help message

Examples:
    jive build -o hello.asm hello.jive
    jive build -target macos hello.jive
    jive run examples/fib.jive
    jive check myfile.jive

Use "jive <command> -h" for more information about a command.
`)
}

// compileFlags are the flags shared by every command that compiles.
type compileFlags struct {
	target         *string
	printHeuristic *bool
	verbose        *bool
}

func addCompileFlags(fs *flag.FlagSet) compileFlags {
	return compileFlags{
		target:         fs.String("target", string(DefaultTarget()), "Target platform: linux or macos"),
		printHeuristic: fs.Bool("print-heuristic", false, "Decide print format at run time by value magnitude"),
		verbose:        fs.Bool("v", false, "Show verbose compilation details"),
	}
}

func (f compileFlags) config() Config {
	target, err := ParseTarget(*f.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := Config{Target: target, PrintHeuristic: *f.printHeuristic}
	if *f.verbose {
		cfg.Log = os.Stdout
	}
	return cfg
}

// parseFileArgs parses args and returns the single file argument.
func parseFileArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func setUsage(fs *flag.FlagSet, synopsis, description string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jive %s\n", synopsis)
		fmt.Fprintf(os.Stderr, "%s\n\n", description)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
}

func readSource(filename string) []byte {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return src
}

func compileFile(filename string, cfg Config) *Result {
	res, err := Compile(readSource(filename), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}
	return res
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <filename>.asm)")
	cf := addCompileFlags(fs)
	setUsage(fs, "build [-o output] [-target linux|macos] [-print-heuristic] [-v] <file>",
		"Compile a .jive file to NASM assembly")

	filename := parseFileArgs(fs, args)
	cfg := cf.config()

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, ".jive") + ".asm"
	}

	if *cf.verbose {
		fmt.Printf("Compiling %s to %s (%s)...\n", filename, outputFile, cfg.Target)
	}

	res := compileFile(filename, cfg)

	if err := writeFileAtomic(outputFile, []byte(res.Asm)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing assembly file %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Compilation successful. Output: %s\n", outputFile)
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cf := addCompileFlags(fs)
	setUsage(fs, "run [-target linux|macos] [-print-heuristic] [-v] <file>",
		"Compile, assemble, link and execute a .jive file")

	filename := parseFileArgs(fs, args)
	cfg := cf.config()

	if *cf.verbose {
		fmt.Printf("Compiling %s...\n", filename)
	}

	res := compileFile(filename, cfg)

	dir, err := os.MkdirTemp("", "jive-run-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	base := strings.TrimSuffix(filepath.Base(filename), ".jive")
	asmFile := filepath.Join(dir, base+".asm")
	exeFile := filepath.Join(dir, base)
	if err := os.WriteFile(asmFile, []byte(res.Asm), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing assembly file: %v\n", err)
		os.Exit(1)
	}

	if *cf.verbose {
		fmt.Printf("Generated %d bytes of assembly\n", len(res.Asm))
		fmt.Printf("Linking...\n")
	}

	if err := linkExecutable(asmFile, exeFile, cfg.Target); err != nil {
		fmt.Fprintf(os.Stderr, "Linking failed: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	if *cf.verbose {
		fmt.Printf("Executing...\n")
	}

	cmd := exec.Command(exeFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution failed: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show verbose checking details")
	setUsage(fs, "check [-v] <file>", "Parse and check a .jive file without writing output")

	filename := parseFileArgs(fs, args)

	if *verbose {
		fmt.Printf("Checking %s...\n", filename)
	}

	cfg := Config{Target: DefaultTarget()}
	if *verbose {
		cfg.Log = os.Stdout
	}
	res := compileFile(filename, cfg)

	fmt.Printf("%s: no errors found\n", filename)

	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(res.AST))
	}
}

func irCommand(args []string) {
	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	printHeuristic := fs.Bool("print-heuristic", false, "Decide print format at run time by value magnitude")
	setUsage(fs, "ir [-print-heuristic] <file>", "Print the stack-machine IR of a .jive file")

	filename := parseFileArgs(fs, args)
	res := compileFile(filename, Config{Target: DefaultTarget(), PrintHeuristic: *printHeuristic})
	io.WriteString(os.Stdout, res.IR.String())
}

func astCommand(args []string) {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	setUsage(fs, "ast <file>", "Print the syntax tree of a .jive file")

	filename := parseFileArgs(fs, args)
	prog, err := Parse(readSource(filename))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}
	fmt.Println(ToSExpr(prog))
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "run":
		runCommand(args)
	case "check":
		checkCommand(args)
	case "ir":
		irCommand(args)
	case "ast":
		astCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
