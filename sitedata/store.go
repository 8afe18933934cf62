// Package sitedata holds every manageable content collection of the site and
// the operations that mutate them through the persistence layer.
//
// A Store is constructed explicitly and owns its collections; nothing in the
// package is global. Each collection changes only after its persistence call
// succeeds, so a failed mutation leaves memory untouched.
package sitedata

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/siteengine/docstore"
)

// Store is the single source of truth for site content.
type Store struct {
	db      docstore.Store
	logger  *zap.Logger
	now     func() time.Time
	metrics *metrics

	Blog         *Collection[BlogPost, NewBlogPost]
	Projects     *Collection[Project, NewProject]
	Team         *Collection[TeamMember, NewTeamMember]
	Testimonials *Collection[Testimonial, NewTestimonial]
	Services     *Services
	Pricing      *Pricing
	Documents    *Documents

	submissions   *Collection[ContactSubmission, NewContactSubmission]
	hasNewLead    atomic.Bool
	usage         *usageCounters
	subscribersMu sync.RWMutex
	subscribers   []func(kind string)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for dates and generated ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over db. Collections start empty; call Load to read
// the persisted content.
func New(db docstore.Store, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
		usage:  newUsageCounters(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("sitedata")

	s.Blog = newCollection(s, blogSpec)
	s.Projects = newCollection(s, projectSpec)
	s.Team = newCollection(s, teamSpec)
	s.Testimonials = newCollection(s, testimonialSpec)
	s.Services = &Services{c: newCollection(s, serviceSpec)}
	s.Pricing = &Pricing{c: newCollection(s, pricingSpec), now: s.now}
	s.Documents = &Documents{c: newCollection(s, documentSpec)}
	s.submissions = newCollection(s, submissionSpec)
	return s
}

// Load fetches every collection once. Fetches run concurrently and
// independently; a failed fetch is logged and leaves its collection empty.
func (s *Store) Load(ctx context.Context) {
	loaders := map[string]func(context.Context) error{
		KindBlog:         s.Blog.load,
		KindProjects:     s.Projects.load,
		KindTeam:         s.Team.load,
		KindTestimonials: s.Testimonials.load,
		KindServices:     s.Services.c.load,
		KindPricing:      s.Pricing.c.load,
		KindDocuments:    s.Documents.c.load,
		KindSubmissions:  s.submissions.load,
	}
	g, gctx := errgroup.WithContext(ctx)
	for kind, load := range loaders {
		g.Go(func() error {
			if err := load(gctx); err != nil {
				s.logger.Warn("initial fetch failed", zap.String("kind", kind), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Subscribe registers fn to be called after every successful mutation with
// the kind that changed.
func (s *Store) Subscribe(fn func(kind string)) {
	s.subscribersMu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.subscribersMu.Unlock()
}

func (s *Store) notify(kind, op string, err error) {
	if s.metrics != nil {
		s.metrics.observeMutation(kind, op, err)
	}
	if err != nil {
		return
	}
	s.subscribersMu.RLock()
	subs := append([]func(string){}, s.subscribers...)
	s.subscribersMu.RUnlock()
	for _, fn := range subs {
		fn(kind)
	}
}

// Counts summarises collection sizes for the admin dashboard.
type Counts struct {
	BlogPosts    int
	Projects     int
	Services     int
	TeamMembers  int
	Testimonials int
	PricingPlans int
	Submissions  int
	Documents    int
}

func (s *Store) Counts() Counts {
	plans := 0
	for _, g := range s.Pricing.All() {
		plans += len(g.Plans)
	}
	return Counts{
		BlogPosts:    s.Blog.Len(),
		Projects:     s.Projects.Len(),
		Services:     s.Services.c.Len(),
		TeamMembers:  s.Team.Len(),
		Testimonials: s.Testimonials.Len(),
		PricingPlans: plans,
		Submissions:  s.submissions.Len(),
		Documents:    s.Documents.c.Len(),
	}
}

var blogSpec = kindSpec[BlogPost, NewBlogPost]{
	kind: KindBlog,
	newID: func(d NewBlogPost, _ time.Time, taken func(string) bool) string {
		return uniqueSlug(d.Title, taken)
	},
	build: func(slug string, d NewBlogPost, now time.Time) BlogPost {
		return BlogPost{
			Slug:            slug,
			Date:            now.Format("January 2, 2006"),
			Title:           d.Title,
			Image:           d.Image,
			Excerpt:         d.Excerpt,
			Author:          d.Author,
			Content:         d.Content,
			MetaTitle:       d.MetaTitle,
			MetaDescription: d.MetaDescription,
			FocusKeyword:    d.FocusKeyword,
		}
	},
	merge: func(p BlogPost, d NewBlogPost) BlogPost {
		p.Title, p.Image, p.Excerpt, p.Author, p.Content = d.Title, d.Image, d.Excerpt, d.Author, d.Content
		p.MetaTitle, p.MetaDescription, p.FocusKeyword = d.MetaTitle, d.MetaDescription, d.FocusKeyword
		return p
	},
	withID: func(p BlogPost, id string) BlogPost { p.Slug = id; return p },
}

var projectSpec = kindSpec[Project, NewProject]{
	kind: KindProjects,
	newID: func(_ NewProject, now time.Time, taken func(string) bool) string {
		return timestampID("proj", now, taken)
	},
	build: func(id string, d NewProject, _ time.Time) Project {
		return Project{
			ID:                  id,
			Image:               d.Image,
			Title:               d.Title,
			Category:            d.Category,
			Description:         d.Description,
			DetailedDescription: d.DetailedDescription,
			TechStack:           d.TechStack,
		}
	},
	merge: func(p Project, d NewProject) Project {
		p.Image, p.Title, p.Category, p.Description = d.Image, d.Title, d.Category, d.Description
		p.DetailedDescription, p.TechStack = d.DetailedDescription, d.TechStack
		return p
	},
	withID: func(p Project, id string) Project { p.ID = id; return p },
	clone:  Project.clone,
}

var teamSpec = kindSpec[TeamMember, NewTeamMember]{
	kind: KindTeam,
	newID: func(_ NewTeamMember, now time.Time, taken func(string) bool) string {
		return timestampID("team", now, taken)
	},
	build: func(id string, d NewTeamMember, _ time.Time) TeamMember {
		return TeamMember{ID: id, Icon: "neural-signature", Name: d.Name, Title: d.Title, Bio: d.Bio}
	},
	merge: func(m TeamMember, d NewTeamMember) TeamMember {
		m.Name, m.Title, m.Bio = d.Name, d.Title, d.Bio
		return m
	},
	withID: func(m TeamMember, id string) TeamMember { m.ID = id; return m },
}

var testimonialSpec = kindSpec[Testimonial, NewTestimonial]{
	kind: KindTestimonials,
	newID: func(_ NewTestimonial, now time.Time, taken func(string) bool) string {
		return timestampID("testimonial", now, taken)
	},
	build: func(id string, d NewTestimonial, _ time.Time) Testimonial {
		return Testimonial{ID: id, Quote: d.Quote, Name: d.Name, Title: d.Title, Company: d.Company}
	},
	merge: func(t Testimonial, d NewTestimonial) Testimonial {
		t.Quote, t.Name, t.Title, t.Company = d.Quote, d.Name, d.Title, d.Company
		return t
	},
	withID: func(t Testimonial, id string) Testimonial { t.ID = id; return t },
}
