// Package flagx helps several independent flag sets share one command line.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags together with their
// values. Both "-c conf.json" and "--config=conf.json" forms are recognised.
// A following token that starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath returns the value of -c / -config found in args, or "" when
// neither flag is present. Other arguments are ignored.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// SplitCommand separates leading global flags from a subcommand and its own
// arguments. valueFlags lists the global flags that take a value; any other
// leading "-x" token is treated as a boolean flag.
//
//	SplitCommand([]string{"-a", "http://h", "upload", "-title", "x"}, []string{"-a"})
//	// global: [-a http://h], cmd: "upload", rest: [-title x]
func SplitCommand(args []string, valueFlags []string) (global []string, cmd string, rest []string) {
	takesValue := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = struct{}{}
	}

	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		arg := args[i]
		global = append(global, arg)
		i++
		if strings.Contains(arg, "=") {
			continue
		}
		if _, ok := takesValue[arg]; ok && i < len(args) {
			global = append(global, args[i])
			i++
		}
	}
	if i < len(args) {
		cmd = args[i]
		rest = args[i+1:]
	}
	return global, cmd, rest
}
