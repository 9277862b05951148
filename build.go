//go:build ignore

// build.go - sales report build script
// Usage: go run build.go [-target=TARGET]
// Targets: build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "salesreport"
	mainPkg = "./cmd/salesreport"
)

var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorCyan = "", "", "", "", ""
	}

	startTime := time.Now()
	var err error
	switch *target {
	case "build":
		err = buildExecutable("dist", *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = clean()
	case "release":
		if err = runTests(*verbose); err == nil {
			err = buildExecutable(filepath.Join("dist", "release"), *verbose)
		}
	default:
		err = fmt.Errorf("unknown target: %s", *target)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Target %q finished in %s", *target, time.Since(startTime).Round(time.Millisecond)))
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
func printWarning(msg string) { fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg) }

// buildExecutable compiles the CLI into outDir with version information stamped in
func buildExecutable(outDir string, verbose bool) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	name := module
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	output := filepath.Join(outDir, name)

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build", "-ldflags", ldflags, "-o", output, mainPkg}
	if verbose {
		args = append(args, "-v")
	}

	printInfo("Building " + output)
	return runCommand("go", args...)
}

func runTests(verbose bool) error {
	args := []string{"test", "-race", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	printInfo("Running tests")
	return runCommand("go", args...)
}

func clean() error {
	printInfo("Removing dist/")
	return os.RemoveAll("dist")
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		printWarning("git commit unavailable, using \"unknown\"")
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
