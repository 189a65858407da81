package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()

	commands := map[string]bool{"help": true, "completion": true}
	for _, c := range root.Commands() {
		commands[c.Name()] = true
	}
	if dir, rest, ok := splitRootArg(args, commands, root.PersistentFlags()); ok {
		a.dir = dir
		args = rest
	}

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logCleanup != nil {
		_ = a.logCleanup()
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// splitRootArg pulls the positional root directory out of args, so that
// `jsonkeys [flags] DIR <command>` reaches cobra as `[flags] <command>`.
// Leading flags are skipped together with their values.
func splitRootArg(args []string, commands map[string]bool, flags *pflag.FlagSet) (string, []string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if len(arg) > 1 && strings.HasPrefix(arg, "-") {
			if takesValue(flags, arg) {
				i++
			}
			continue
		}
		if commands[arg] {
			break
		}
		rest := make([]string, 0, len(args)-1)
		rest = append(rest, args[:i]...)
		rest = append(rest, args[i+1:]...)
		return arg, rest, true
	}
	return "", args, false
}

// takesValue reports whether the flag token consumes the next argument.
func takesValue(flags *pflag.FlagSet, token string) bool {
	if strings.Contains(token, "=") {
		return false
	}
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(token, "--"); ok {
		f = flags.Lookup(name)
	} else if len(token) == 2 {
		f = flags.ShorthandLookup(token[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}
