package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const secretKeyVar = "SITE_SECRET_KEY"

var keygenCommand = &cli.Command{
	Name:        "keygen",
	Usage:       "Generate a secret key and store it in the env file",
	Description: "Replaces the SITE_SECRET_KEY line of the env file, or appends one.\n" +
		"Every other line, comments included, is kept as written.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "env file to update"},
	},
	Action: func(c *cli.Context) error {
		path := c.String("env-file")
		if _, err := writeSecretKey(path); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		fmt.Fprintf(c.App.Writer, "Secret key generated and saved to %s\n", path)
		return nil
	},
}

// generateSecretKey returns 32 random bytes, hex encoded.
func generateSecretKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// writeSecretKey sets SITE_SECRET_KEY in the env file at path, creating
// the file if needed. Only the assignment line changes; the rest of the
// file is kept byte for byte.
func writeSecretKey(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := godotenv.UnmarshalBytes(src); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	key, err := generateSecretKey()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, setEnvLine(src, secretKeyVar, key), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return key, nil
}

// setEnvLine replaces every assignment of name in src with name=value, or
// appends one when there is none.
func setEnvLine(src []byte, name, value string) []byte {
	line := name + "=" + value
	lines := strings.Split(string(src), "\n")
	found := false
	for i, l := range lines {
		if envLineName(l) == name {
			lines[i] = line
			found = true
		}
	}
	out := strings.Join(lines, "\n")
	if !found {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += line + "\n"
	}
	return []byte(out)
}

// envLineName returns the variable assigned on an env file line, or "".
func envLineName(l string) string {
	l = strings.TrimSpace(l)
	l = strings.TrimPrefix(l, "export ")
	name, _, ok := strings.Cut(l, "=")
	if !ok || strings.HasPrefix(l, "#") {
		return ""
	}
	return strings.TrimSpace(name)
}
