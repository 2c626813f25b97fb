package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseValueFlag extracts a "--name value" or "--name=value" flag from args
func parseValueFlag(args []string, name string) (string, []string) {
	var value string
	var remainingArgs []string

	i := 0
	for i < len(args) {
		if args[i] == name && i+1 < len(args) {
			value = args[i+1]
			i += 2
		} else if strings.HasPrefix(args[i], name+"=") {
			value = strings.TrimPrefix(args[i], name+"=")
			i++
		} else {
			remainingArgs = append(remainingArgs, args[i])
			i++
		}
	}

	return value, remainingArgs
}

// parseBoolFlag reports whether a bare "--name" switch is present
func parseBoolFlag(args []string, name string) (bool, []string) {
	var found bool
	var remainingArgs []string

	for _, arg := range args {
		if arg == name {
			found = true
			continue
		}
		remainingArgs = append(remainingArgs, arg)
	}

	return found, remainingArgs
}

type runOptions struct {
	upload      string
	policy      string
	adjustments string
	output      string
	weekly      string
	save        bool
}

func parseRunFlags(args []string) (runOptions, []string) {
	var opts runOptions
	opts.policy, args = parseValueFlag(args, "--policy")
	opts.adjustments, args = parseValueFlag(args, "--adjustments")
	opts.output, args = parseValueFlag(args, "--output")
	opts.weekly, args = parseValueFlag(args, "--weekly")
	opts.save, args = parseBoolFlag(args, "--save")
	return opts, args
}

func parseLimit(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("--limit must be a positive number, got %q", s)
	}
	return n, nil
}
