package config

import "fmt"

// finalizeResources validates each resource and rejects duplicate names.
func (c *Config) finalizeResources() error {
	seen := make(map[string]bool, len(c.Resources))
	for i := range c.Resources {
		r := &c.Resources[i]
		if err := r.Finalize(); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate resource: %s", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// finalizeFiles validates each file route and rejects duplicate routes.
func (c *Config) finalizeFiles() error {
	seen := make(map[string]bool, len(c.Files))
	for i := range c.Files {
		f := &c.Files[i]
		if err := f.Finalize(); err != nil {
			return err
		}
		if seen[f.Route] {
			return fmt.Errorf("duplicate route: %s", f.Route)
		}
		seen[f.Route] = true
	}
	return nil
}
