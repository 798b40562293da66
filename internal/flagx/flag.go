// Package flagx holds helpers for parsing a subset of command-line flags
// without tripping over flags that belong to other parsers.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the flags named in allowed, together with their
// values, so a FlagSet can parse its own subset of the command line.
//
// Supported forms:
//  1. Flag and value as separate arguments: -lockout 45s
//  2. Flag and value joined with '=':       -lockout=45s
//
// A following token that starts with "-" is never taken as a value.
//
// Parameters:
//
//	args    - the command-line arguments (usually os.Args[1:])
//	allowed - flag names as they appear on the command line (e.g. "-c")
//
// Returns:
//
//	The allowed flags in their original order, each followed by its value
//	when the value was a separate argument.
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if keep[name] {
				out = append(out, arg)
			}
			continue
		}

		if !keep[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the path given with -c, -config or --config, or ""
// when none is present. The last occurrence wins.
//
// Parameters:
//
//	args - the command-line arguments (usually os.Args[1:])
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file (json or yaml)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
