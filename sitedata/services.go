package sitedata

import (
	"context"
	"fmt"
	"time"
)

// Services is the service catalog. Services are seeded, not created from the
// admin panel, so the only mutation offered is Update.
type Services struct {
	c *Collection[Service, NewService]
}

func (s *Services) All() []Service { return s.c.All() }
func (s *Services) Get(id string) (Service, bool) { return s.c.Get(id) }
func (s *Services) Len() int { return s.c.Len() }
func (s *Services) Update(ctx context.Context, id string, d NewService) error {
	return s.c.Update(ctx, id, d)
}

var serviceSpec = kindSpec[Service, NewService]{
	kind: KindServices,
	build: func(id string, d NewService, _ time.Time) Service {
		return Service{ID: id, Title: d.Title, Description: d.Description}
	},
	merge: func(s Service, d NewService) Service {
		s.Title, s.Description = d.Title, d.Description
		return s
	},
	withID: func(s Service, id string) Service { s.ID = id; return s },
}

// Pricing holds the pricing plans grouped by service. Plan mutations rewrite
// the owning group document while holding the collection's write lock.
type Pricing struct {
	c   *Collection[ServicePricing, ServicePricing]
	now func() time.Time
}

func (p *Pricing) All() []ServicePricing { return p.c.All() }

// Group returns the pricing group for serviceID.
func (p *Pricing) Group(serviceID string) (ServicePricing, bool) { return p.c.Get(serviceID) }

// Plan returns one plan of a group.
func (p *Pricing) Plan(serviceID, planID string) (PricingPlan, bool) {
	g, ok := p.c.Get(serviceID)
	if !ok {
		return PricingPlan{}, false
	}
	for _, pl := range g.Plans {
		if pl.ID == planID {
			return pl, true
		}
	}
	return PricingPlan{}, false
}

func (p *Pricing) planTaken(id string) bool {
	p.c.mu.RLock()
	defer p.c.mu.RUnlock()
	for _, g := range p.c.items {
		for _, pl := range g.Plans {
			if pl.ID == id {
				return true
			}
		}
	}
	return false
}

// AddPlan inserts a new plan at the front of the service's plans.
func (p *Pricing) AddPlan(ctx context.Context, serviceID string, d NewPricingPlan) error {
	p.c.writeMu.Lock()
	defer p.c.writeMu.Unlock()

	g, ok := p.c.Get(serviceID)
	if !ok {
		return fmt.Errorf("add plan to %q: %w", serviceID, ErrNotFound)
	}
	plan := planFromDraft(timestampID("plan", p.now(), p.planTaken), d)
	g.Plans = append([]PricingPlan{plan}, g.Plans...)
	return p.c.replaceDoc(ctx, "add", g)
}

// UpdatePlan merges d over the plan planID of serviceID.
func (p *Pricing) UpdatePlan(ctx context.Context, serviceID, planID string, d NewPricingPlan) error {
	p.c.writeMu.Lock()
	defer p.c.writeMu.Unlock()

	g, ok := p.c.Get(serviceID)
	if !ok {
		return fmt.Errorf("update plan in %q: %w", serviceID, ErrNotFound)
	}
	plans := make([]PricingPlan, len(g.Plans))
	found := false
	for i, pl := range g.Plans {
		if pl.ID == planID {
			pl = planFromDraft(planID, d)
			found = true
		}
		plans[i] = pl
	}
	if !found {
		return fmt.Errorf("update plan %q: %w", planID, ErrNotFound)
	}
	g.Plans = plans
	return p.c.replaceDoc(ctx, "update", g)
}

// DeletePlan removes planID from serviceID.
func (p *Pricing) DeletePlan(ctx context.Context, serviceID, planID string) error {
	p.c.writeMu.Lock()
	defer p.c.writeMu.Unlock()

	g, ok := p.c.Get(serviceID)
	if !ok {
		return fmt.Errorf("delete plan from %q: %w", serviceID, ErrNotFound)
	}
	plans := make([]PricingPlan, 0, len(g.Plans))
	for _, pl := range g.Plans {
		if pl.ID != planID {
			plans = append(plans, pl)
		}
	}
	if len(plans) == len(g.Plans) {
		return fmt.Errorf("delete plan %q: %w", planID, ErrNotFound)
	}
	g.Plans = plans
	return p.c.replaceDoc(ctx, "delete", g)
}

// Plans binds the plan operations of one service, for use by a CRUD manager.
func (p *Pricing) Plans(serviceID string) *PlanOps {
	return &PlanOps{p: p, serviceID: serviceID}
}

// PlanOps is the add/update/delete set for the plans of one service.
type PlanOps struct {
	p         *Pricing
	serviceID string
}

func (o *PlanOps) ServiceID() string { return o.serviceID }

func (o *PlanOps) All() []PricingPlan {
	g, _ := o.p.Group(o.serviceID)
	return g.Plans
}

func (o *PlanOps) Add(ctx context.Context, d NewPricingPlan) error {
	return o.p.AddPlan(ctx, o.serviceID, d)
}

func (o *PlanOps) Update(ctx context.Context, planID string, d NewPricingPlan) error {
	return o.p.UpdatePlan(ctx, o.serviceID, planID, d)
}

func (o *PlanOps) Delete(ctx context.Context, planID string) error {
	return o.p.DeletePlan(ctx, o.serviceID, planID)
}

func planFromDraft(id string, d NewPricingPlan) PricingPlan {
	return PricingPlan{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		PriceDetail: d.PriceDetail,
		Description: d.Description,
		Features:    d.Features,
		IsPopular:   d.IsPopular,
	}
}

var pricingSpec = kindSpec[ServicePricing, ServicePricing]{
	kind: KindPricing,
	build: func(id string, g ServicePricing, _ time.Time) ServicePricing {
		g.ID = id
		return g
	},
	withID: func(g ServicePricing, id string) ServicePricing { g.ID = id; return g },
	clone:  ServicePricing.clone,
}
