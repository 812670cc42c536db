package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"jasypt-go/internal/properties"
)

// parseDefines turns repeated "-D key=value" flags into a property map.
// A later definition of the same key wins.
func parseDefines(defs []string) (properties.Map, error) {
	m := properties.Map{}
	for _, d := range defs {
		key, value, ok := strings.Cut(d, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property definition %q (want key=value)", d)
		}
		m[key] = value
	}
	return m, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--prompt-password needs an interactive terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(b), nil
}
