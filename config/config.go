// Package config loads the YAML document describing one or more MCP
// server launch parameters and resolves ${NAME} environment references
// against the parent process environment. The core client package never
// interprets this file itself; it only ever receives an already-resolved
// command/args/env/cwd tuple.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ServerConfig is one MCP server's subprocess launch parameters.
type ServerConfig struct {
	ID      string            `yaml:"id"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Cwd     string            `yaml:"cwd"`
}

// Document is the top-level YAML shape: a named list of servers.
type Document struct {
	Servers []ServerConfig `yaml:"servers"`
}

// DefaultPath returns ~/.config/chuk-mcp/servers.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chuk-mcp", "servers.yaml"), nil
}

// Load reads and parses the YAML document at path, resolving ${NAME}
// substitutions in every server's Env values.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	for i := range doc.Servers {
		doc.Servers[i].Env = resolveEnvMap(doc.Servers[i].Env)
	}

	return &doc, nil
}

// ByID finds one server's config by its declared ID.
func (d *Document) ByID(id string) (ServerConfig, bool) {
	for _, s := range d.Servers {
		if s.ID == id {
			return s, true
		}
	}
	return ServerConfig{}, false
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// resolveEnvMap substitutes ${NAME} references in every value against the
// parent process environment. A reference to an unset variable keeps its
// literal "${NAME}" text rather than being silently blanked out.
func resolveEnvMap(env map[string]string) map[string]string {
	resolved := make(map[string]string, len(env))
	for k, v := range env {
		resolved[k] = substitute(v)
	}
	return resolved
}

func substitute(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envRefPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}
