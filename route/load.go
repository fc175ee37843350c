package route

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Login       string            `yaml:"login"`
	DefaultHome string            `yaml:"default_home"`
	CatchAll    string            `yaml:"catch_all"`
	Homes       map[string]string `yaml:"homes"`
	Routes      []routeFile       `yaml:"routes"`
}

type routeFile struct {
	Name         string    `yaml:"name"`
	Path         string    `yaml:"path"`
	RequiresAuth bool      `yaml:"requires_auth"`
	Roles        *[]string `yaml:"roles"`
	Redirect     string    `yaml:"redirect"`
}

// Load decodes a YAML route table and validates it. Unknown keys and
// undeclared roles are rejected.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f tableFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty route file", ErrInvalidTable)
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidTable, err)
	}

	def := Definition{
		Login:       f.Login,
		DefaultHome: f.DefaultHome,
		CatchAll:    f.CatchAll,
		Routes:      make([]Descriptor, 0, len(f.Routes)),
	}

	var problems []error
	if f.Homes != nil {
		def.Homes = make(map[Role]string, len(f.Homes))
		for raw, name := range f.Homes {
			role, err := ParseRole(raw)
			if err != nil {
				problems = append(problems, fmt.Errorf("homes: %w", err))
				continue
			}
			def.Homes[role] = name
		}
	}

	for _, rf := range f.Routes {
		d := Descriptor{
			Name:         rf.Name,
			Path:         rf.Path,
			RequiresAuth: rf.RequiresAuth,
			Redirect:     rf.Redirect,
		}
		if rf.Roles != nil {
			d.AllowedRoles = make([]Role, 0, len(*rf.Roles))
			for _, raw := range *rf.Roles {
				role, err := ParseRole(raw)
				if err != nil {
					problems = append(problems, fmt.Errorf("route %q: %w", rf.Name, err))
					continue
				}
				d.AllowedRoles = append(d.AllowedRoles, role)
			}
		}
		def.Routes = append(def.Routes, d)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(problems...))
	}

	return NewTable(def)
}

// LoadFile reads and validates the YAML route table at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return Load(bytes.NewReader(data))
}
