// Command patternminer scans OHLCV price series for head-and-shoulders,
// double top/bottom, and triple top/bottom chart patterns.
package main

import (
	"errors"
	"fmt"
	"os"

	"chartpatterns/internal/cli"
	"chartpatterns/internal/config"
	"chartpatterns/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := logging.NewLogger()

	configDir, _ := peekConfigFlag(os.Args[1:])
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		return 1
	}

	rootCmd := cli.NewRootCmd(&cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, cli.ErrInvalidArgs) {
			return 2
		}
		return 1
	}
	return 0
}

// peekConfigFlag extracts --config's value before cobra parses flags,
// since the config directory must be known to load Config itself.
func peekConfigFlag(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
		if val, ok := cutPrefix(arg, "--config="); ok {
			return val, true
		}
	}
	return "", false
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}
