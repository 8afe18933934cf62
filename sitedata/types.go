package sitedata

import (
	"slices"
	"time"
)

// Collection names used as persistence kinds.
const (
	KindBlog         = "blog"
	KindProjects     = "projects"
	KindServices     = "services"
	KindTeam         = "team"
	KindTestimonials = "testimonials"
	KindPricing      = "pricing"
	KindSubmissions  = "submissions"
	KindDocuments    = "documents"
)

// BlogPost is an article rendered on the blog and managed from the admin panel.
type BlogPost struct {
	Slug            string `json:"slug" yaml:"slug"`
	Title           string `json:"title" yaml:"title"`
	Image           string `json:"image" yaml:"image"`
	Excerpt         string `json:"excerpt" yaml:"excerpt"`
	Author          string `json:"author" yaml:"author"`
	Date            string `json:"date" yaml:"date"`
	Content         string `json:"content" yaml:"content"`
	MetaTitle       string `json:"metaTitle,omitempty" yaml:"metaTitle"`
	MetaDescription string `json:"metaDescription,omitempty" yaml:"metaDescription"`
	FocusKeyword    string `json:"focusKeyword,omitempty" yaml:"focusKeyword"`
}

func (p BlogPost) Identity() string { return p.Slug }

// NewBlogPost is the editable part of a BlogPost.
type NewBlogPost struct {
	Title           string `json:"title"`
	Image           string `json:"image"`
	Excerpt         string `json:"excerpt"`
	Author          string `json:"author"`
	Content         string `json:"content"`
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	FocusKeyword    string `json:"focusKeyword,omitempty"`
}

// Draft returns the editable fields of p.
func (p BlogPost) Draft() NewBlogPost {
	return NewBlogPost{
		Title:           p.Title,
		Image:           p.Image,
		Excerpt:         p.Excerpt,
		Author:          p.Author,
		Content:         p.Content,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		FocusKeyword:    p.FocusKeyword,
	}
}

// Project is a portfolio entry.
type Project struct {
	ID                  string   `json:"id" yaml:"id"`
	Image               string   `json:"image" yaml:"image"`
	Title               string   `json:"title" yaml:"title"`
	Category            string   `json:"category" yaml:"category"`
	Description         string   `json:"description" yaml:"description"`
	DetailedDescription string   `json:"detailedDescription" yaml:"detailedDescription"`
	TechStack           []string `json:"techStack" yaml:"techStack"`
}

func (p Project) Identity() string { return p.ID }

func (p Project) clone() Project {
	p.TechStack = slices.Clone(p.TechStack)
	return p
}

type NewProject struct {
	Image               string   `json:"image"`
	Title               string   `json:"title"`
	Category            string   `json:"category"`
	Description         string   `json:"description"`
	DetailedDescription string   `json:"detailedDescription"`
	TechStack           []string `json:"techStack"`
}

func (p Project) Draft() NewProject {
	return NewProject{
		Image:               p.Image,
		Title:               p.Title,
		Category:            p.Category,
		Description:         p.Description,
		DetailedDescription: p.DetailedDescription,
		TechStack:           append([]string(nil), p.TechStack...),
	}
}

// Service is an offering shown in the services section. The icon is a
// presentation key and is not editable.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Icon        string `json:"icon" yaml:"icon"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

func (s Service) Identity() string { return s.ID }

type NewService struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s Service) Draft() NewService {
	return NewService{Title: s.Title, Description: s.Description}
}

// TeamMember is a person listed in the team section.
type TeamMember struct {
	ID    string `json:"id" yaml:"id"`
	Icon  string `json:"icon" yaml:"icon"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Bio   string `json:"bio" yaml:"bio"`
}

func (m TeamMember) Identity() string { return m.ID }

type NewTeamMember struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio"`
}

func (m TeamMember) Draft() NewTeamMember {
	return NewTeamMember{Name: m.Name, Title: m.Title, Bio: m.Bio}
}

type Testimonial struct {
	ID      string `json:"id" yaml:"id"`
	Quote   string `json:"quote" yaml:"quote"`
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Company string `json:"company" yaml:"company"`
}

func (t Testimonial) Identity() string { return t.ID }

type NewTestimonial struct {
	Quote   string `json:"quote"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

func (t Testimonial) Draft() NewTestimonial {
	return NewTestimonial{Quote: t.Quote, Name: t.Name, Title: t.Title, Company: t.Company}
}

// PricingPlan is one tier inside a ServicePricing group.
type PricingPlan struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       string   `json:"price" yaml:"price"`
	PriceDetail string   `json:"priceDetail,omitempty" yaml:"priceDetail"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
	IsPopular   bool     `json:"isPopular,omitempty" yaml:"isPopular"`
}

func (p PricingPlan) Identity() string { return p.ID }

func (p PricingPlan) clone() PricingPlan {
	p.Features = slices.Clone(p.Features)
	return p
}

type NewPricingPlan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	PriceDetail string   `json:"priceDetail,omitempty"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	IsPopular   bool     `json:"isPopular,omitempty"`
}

func (p PricingPlan) Draft() NewPricingPlan {
	return NewPricingPlan{
		Name:        p.Name,
		Price:       p.Price,
		PriceDetail: p.PriceDetail,
		Description: p.Description,
		Features:    append([]string(nil), p.Features...),
		IsPopular:   p.IsPopular,
	}
}

// ServicePricing groups the pricing plans offered for one service.
type ServicePricing struct {
	ID           string        `json:"id" yaml:"id"`
	ServiceTitle string        `json:"serviceTitle" yaml:"serviceTitle"`
	Icon         string        `json:"icon" yaml:"icon"`
	Plans        []PricingPlan `json:"plans" yaml:"plans"`
}

func (g ServicePricing) Identity() string { return g.ID }

func (g ServicePricing) clone() ServicePricing {
	if g.Plans != nil {
		plans := make([]PricingPlan, len(g.Plans))
		for i, pl := range g.Plans {
			plans[i] = pl.clone()
		}
		g.Plans = plans
	}
	return g
}

// ContactSubmission is a lead sent through the contact form.
type ContactSubmission struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Organization  string    `json:"organization"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber"`
	Message       string    `json:"message"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

func (s ContactSubmission) Identity() string { return s.ID }

type NewContactSubmission struct {
	Name          string `json:"name"`
	Organization  string `json:"organization"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Message       string `json:"message"`
}
