package api

import (
	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/internal/fileserve"
	"github.com/JaimeStill/resource-lab/internal/intake"
	"github.com/JaimeStill/resource-lab/internal/resource"
)

// Domain holds the HTTP handlers for every configured resource and file route.
type Domain struct {
	Resources []*resource.Handler
	Files     []*fileserve.Handler
}

// NewDomain builds a controller and handler per resource, wrapping upload
// resources with an UploadController that shares one intake.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	in := intake.New(runtime.Storage, runtime.MaxUploadSize, runtime.Logger)

	domain := &Domain{
		Resources: make([]*resource.Handler, 0, len(cfg.Resources)),
		Files:     make([]*fileserve.Handler, 0, len(cfg.Files)),
	}

	for i := range cfg.Resources {
		rc := &cfg.Resources[i]
		coll := runtime.Store.Collection(rc.Collection, rc.Schema())
		ctrl := resource.NewController(rc, coll, runtime.Logger)

		var uploads *resource.UploadController
		if rc.Upload != nil {
			uploads = resource.NewUploadController(ctrl, rc.Upload, in, runtime.Storage, runtime.Logger)
		}

		domain.Resources = append(domain.Resources,
			resource.NewHandler(rc, ctrl, uploads, runtime.Pagination, runtime.Logger))
	}

	for i := range cfg.Files {
		domain.Files = append(domain.Files,
			fileserve.NewHandler(&cfg.Files[i], runtime.Storage, runtime.Logger))
	}

	return domain
}
