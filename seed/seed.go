// Package seed loads the default site content into a persistence layer so a
// fresh install renders a complete site.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/siteengine/docstore"
	"github.com/eringen/siteengine/sitedata"
)

// Defaults is the content shipped with the binary.
//
//go:embed defaults.yaml
var Defaults []byte

// Content is the seed file layout.
type Content struct {
	Services     []sitedata.Service        `yaml:"services"`
	Pricing      []sitedata.ServicePricing `yaml:"pricing"`
	Projects     []sitedata.Project        `yaml:"projects"`
	Team         []sitedata.TeamMember     `yaml:"team"`
	Testimonials []sitedata.Testimonial    `yaml:"testimonials"`
	Blog         []sitedata.BlogPost       `yaml:"blog"`
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(data []byte) (Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Content{}, fmt.Errorf("parse seed: %w", err)
	}
	return c, nil
}

// Result reports what Load wrote.
type Result struct {
	Written map[string]int
	Skipped []string
}

// Load writes every kind of c that has no documents yet. Kinds that already
// hold content are left alone. Items keep the order of the seed file.
func Load(ctx context.Context, db docstore.Store, c Content, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := Result{Written: make(map[string]int)}
	steps := []func() error{
		func() error { return load(ctx, db, sitedata.KindServices, c.Services, &res, logger) },
		func() error { return load(ctx, db, sitedata.KindPricing, c.Pricing, &res, logger) },
		func() error { return load(ctx, db, sitedata.KindProjects, c.Projects, &res, logger) },
		func() error { return load(ctx, db, sitedata.KindTeam, c.Team, &res, logger) },
		func() error { return load(ctx, db, sitedata.KindTestimonials, c.Testimonials, &res, logger) },
		func() error { return load(ctx, db, sitedata.KindBlog, c.Blog, &res, logger) },
	}
	var errs []error
	for _, step := range steps {
		if err := step(); err != nil {
			errs = append(errs, err)
		}
	}
	return res, errors.Join(errs...)
}

func load[T sitedata.Entity](ctx context.Context, db docstore.Store, kind string, items []T, res *Result, logger *zap.Logger) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := db.FetchAll(ctx, kind)
	if err != nil {
		return fmt.Errorf("seed %s: %w", kind, err)
	}
	if len(existing) > 0 {
		logger.Info("seed skipped", zap.String("kind", kind), zap.Int("existing", len(existing)))
		res.Skipped = append(res.Skipped, kind)
		return nil
	}
	// Listings are newest first, so the first item is written last.
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		id := item.Identity()
		if id == "" {
			return fmt.Errorf("seed %s: item %d has no id", kind, i)
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("seed %s/%s: %w", kind, id, err)
		}
		if _, err := db.Create(ctx, kind, docstore.Document{ID: id, Data: data}); err != nil {
			return fmt.Errorf("seed %s/%s: %w", kind, id, err)
		}
		res.Written[kind]++
	}
	logger.Info("seeded", zap.String("kind", kind), zap.Int("count", res.Written[kind]))
	return nil
}
