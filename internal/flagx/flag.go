// Package flagx holds helpers for processes that parse the same command line
// in several passes (config file first, explicit flags last).
package flagx

import (
	"flag"
	"io"
	"strings"
)

// ConfigFileFlags are the flag spellings that point at a JSON config file.
var ConfigFileFlags = []string{"-c", "-config", "--config"}

// FilterArgs keeps only the flags listed in allowedFlags together with their
// values. Both "-c value" and "-c=value" forms are recognised; a token that
// starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
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

// ConfigPath returns the config file named by -c/-config in args (normally
// os.Args[1:]). The last occurrence wins; "" means no file was given.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
