package resource

import (
	"fmt"
	"path"
	"strings"

	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// Config describes one HTTP resource backed by a store collection.
type Config struct {
	// Name is the route segment: /{name} and /{name}/{id}.
	Name string `toml:"name"`
	// Collection defaults to Name.
	Collection string `toml:"collection"`
	// OrderBy is "field" (ascending), "-field" (descending), or "none".
	OrderBy string `toml:"order_by"`
	// Filters lists the query keys honoured as equality filters on List.
	Filters []string `toml:"filters"`
	// Required lists fields the store requires on create.
	Required []string `toml:"required"`
	// Upload enables multipart file intake on Create and Update.
	Upload *UploadConfig `toml:"upload"`
}

// UploadConfig selects single-field or multi-field upload mode.
// Exactly one of Field and Fields is set.
type UploadConfig struct {
	// Folder is the storage key prefix for this resource's files. Defaults to the resource name.
	Folder string   `toml:"folder"`
	Field  string   `toml:"field"`
	Fields []string `toml:"fields"`
}

// Multi reports whether the upload accepts one file per field across several fields.
func (u *UploadConfig) Multi() bool {
	return len(u.Fields) > 0
}

// FieldNames returns the accepted file fields.
func (u *UploadConfig) FieldNames() []string {
	if u.Multi() {
		return u.Fields
	}
	return []string{u.Field}
}

// Finalize applies defaults and validates the resource configuration.
func (c *Config) Finalize() error {
	c.Name = strings.Trim(c.Name, "/")
	if c.Name == "" {
		return fmt.Errorf("resource name required")
	}
	if strings.ContainsAny(c.Name, "/{} ") {
		return fmt.Errorf("resource %s: name must be a single path segment", c.Name)
	}

	if c.Collection == "" {
		c.Collection = c.Name
	}
	if c.OrderBy == "" {
		c.OrderBy = query.SortNone
	}

	if c.Upload != nil {
		if err := c.Upload.finalize(c.Name); err != nil {
			return fmt.Errorf("resource %s: %w", c.Name, err)
		}
	}
	return nil
}

func (u *UploadConfig) finalize(name string) error {
	if u.Folder == "" {
		u.Folder = name
	}
	u.Folder = path.Clean(strings.Trim(u.Folder, "/"))
	if u.Folder == "." || u.Folder == ".." || strings.HasPrefix(u.Folder, "../") {
		return fmt.Errorf("invalid upload folder: %s", u.Folder)
	}

	switch {
	case u.Field != "" && len(u.Fields) > 0:
		return fmt.Errorf("upload: set field or fields, not both")
	case u.Field == "" && len(u.Fields) == 0:
		return fmt.Errorf("upload: field or fields required")
	}

	seen := make(map[string]bool, len(u.Fields))
	for _, f := range u.Fields {
		if f == "" || seen[f] {
			return fmt.Errorf("upload: fields must be unique and non-empty")
		}
		seen[f] = true
	}
	return nil
}

// Schema returns the store constraints for this resource.
func (c *Config) Schema() store.Schema {
	return store.Schema{Required: c.Required}
}
