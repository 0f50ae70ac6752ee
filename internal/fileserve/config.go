package fileserve

import (
	"fmt"
	"path"
	"strings"
)

// Config maps a route prefix to a folder of stored files.
type Config struct {
	// Route is the URL prefix; files are served at Route + "/{fileName}".
	Route string `toml:"route"`
	// Segments are joined under the storage root to locate the folder.
	Segments []string `toml:"segments"`
}

// Finalize normalizes the route and validates the folder segments.
func (c *Config) Finalize() error {
	c.Route = "/" + strings.Trim(c.Route, "/")
	if c.Route == "/" {
		return fmt.Errorf("route required")
	}
	if strings.ContainsAny(c.Route, "{} ") {
		return fmt.Errorf("route %s: must not contain wildcards or spaces", c.Route)
	}

	if len(c.Segments) == 0 {
		return fmt.Errorf("route %s: segments required", c.Route)
	}
	for _, s := range c.Segments {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("route %s: invalid segment %q", c.Route, s)
		}
	}
	return nil
}

// Folder returns the storage key of the served folder.
func (c *Config) Folder() string {
	return path.Join(c.Segments...)
}
