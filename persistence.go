package siteengine

import (
	"context"
	"fmt"

	"github.com/eringen/siteengine/blob"
	"github.com/eringen/siteengine/docstore"
)

func openDocStore(ctx context.Context, cfg SiteConfig) (docstore.Store, error) {
	switch cfg.Persistence {
	case PersistenceSQLite:
		return docstore.NewSQLite(cfg.DatabasePath)
	case PersistencePostgres:
		return docstore.NewPostgres(ctx, cfg.PostgresDSN)
	case PersistenceMemory:
		return docstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", cfg.Persistence)
	}
}

func openBlobStore(ctx context.Context, cfg SiteConfig) (blob.Store, error) {
	switch cfg.Blob {
	case BlobFS:
		return blob.NewFS(cfg.UploadsDir)
	case BlobS3:
		return blob.NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob)
	}
}

// OpenDocStore opens the persistence driver selected by cfg. The caller
// closes it.
func OpenDocStore(ctx context.Context, cfg SiteConfig) (docstore.Store, error) {
	cfg.setDefaults()
	return openDocStore(ctx, cfg)
}
