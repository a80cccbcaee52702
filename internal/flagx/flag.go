// Package flagx lets several packages read their own flags from os.Args
// without tripping over each other.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags of args, together with their values.
//
// Recognised forms:
//
//	-c conf.json     flag and value as separate arguments
//	-config=x.yaml   flag and value joined by '='
//
// A separate value is taken only when the next argument does not start with
// '-'. Flags listed in boolFlags never take a separate value, so
// "-debug positional" keeps just "-debug".
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = false
	}
	for _, f := range boolFlags {
		if _, ok := keep[f]; ok {
			keep[f] = true
		}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := keep[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		isBool, ok := keep[arg]
		if !ok {
			continue
		}
		out = append(out, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the config file named by -c or -config in os.Args,
// or "" when neither is given. When both appear the last one wins.
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}
