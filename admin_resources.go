package siteengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/siteengine/crud"
	"github.com/eringen/siteengine/sitedata"
	"github.com/eringen/siteengine/views"
)

// registerResources mounts the management views of every content kind.
func (a *App) registerResources(g *echo.Group) {
	s := a.Store

	register(a, g, "/blog", resource[sitedata.BlogPost, sitedata.NewBlogPost]{
		name:  "blog",
		label: "post",
		title: fixedTitle("Blog posts"),
		ops:   func(string) crud.Operations[sitedata.NewBlogPost] { return crud.Bind[sitedata.NewBlogPost](s.Blog) },
		list:  func(echo.Context, string) []sitedata.BlogPost { return s.Blog.All() },
		find:  func(_, id string) (sitedata.BlogPost, bool) { return s.Blog.Get(id) },
		row: func(p sitedata.BlogPost) views.Row {
			return views.Row{ID: p.Slug, Title: p.Title, Detail: p.Date + " · " + p.Author, Image: p.Image, Link: "/blog/" + p.Slug + "/"}
		},
		form: func(d sitedata.NewBlogPost) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Title", Type: views.FieldText, Value: d.Title, Required: true},
				{Name: "image", Label: "Image", Type: views.FieldImage, Value: d.Image},
				{Name: "author", Label: "Author", Type: views.FieldText, Value: d.Author},
				{Name: "excerpt", Label: "Excerpt", Type: views.FieldTextarea, Value: d.Excerpt},
				{Name: "content", Label: "Content", Type: views.FieldMarkdown, Value: d.Content, Hint: "Markdown"},
				{Name: "metaTitle", Label: "Meta title", Type: views.FieldText, Value: d.MetaTitle},
				{Name: "metaDescription", Label: "Meta description", Type: views.FieldTextarea, Value: d.MetaDescription},
				{Name: "focusKeyword", Label: "Focus keyword", Type: views.FieldText, Value: d.FocusKeyword},
			}
		},
		edit:  sitedata.BlogPost.Draft,
		blank: func() sitedata.NewBlogPost { return sitedata.NewBlogPost{Author: a.Config.Author} },
		parse: func(c echo.Context) (sitedata.NewBlogPost, error) {
			d := sitedata.NewBlogPost{
				Title:           formText(c, "title"),
				Image:           formText(c, "image"),
				Author:          formText(c, "author"),
				Excerpt:         formText(c, "excerpt"),
				Content:         c.FormValue("content"),
				MetaTitle:       formText(c, "metaTitle"),
				MetaDescription: formText(c, "metaDescription"),
				FocusKeyword:    formText(c, "focusKeyword"),
			}
			return d, requireFields("Title", d.Title)
		},
		assist: true,
	})

	register(a, g, "/projects", resource[sitedata.Project, sitedata.NewProject]{
		name:  "projects",
		label: "project",
		title: fixedTitle("Projects"),
		ops:   func(string) crud.Operations[sitedata.NewProject] { return crud.Bind[sitedata.NewProject](s.Projects) },
		list:  func(echo.Context, string) []sitedata.Project { return s.Projects.All() },
		find:  func(_, id string) (sitedata.Project, bool) { return s.Projects.Get(id) },
		row: func(p sitedata.Project) views.Row {
			return views.Row{ID: p.ID, Title: p.Title, Detail: p.Category, Image: p.Image, Link: "/portfolio/" + p.ID + "/"}
		},
		form: func(d sitedata.NewProject) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Title", Type: views.FieldText, Value: d.Title, Required: true},
				{Name: "category", Label: "Category", Type: views.FieldText, Value: d.Category},
				{Name: "image", Label: "Image", Type: views.FieldImage, Value: d.Image},
				{Name: "description", Label: "Description", Type: views.FieldTextarea, Value: d.Description},
				{Name: "detailedDescription", Label: "Case study", Type: views.FieldMarkdown, Value: d.DetailedDescription, Hint: "Markdown"},
				{Name: "techStack", Label: "Tech stack", Type: views.FieldLines, Value: strings.Join(d.TechStack, "\n"), Hint: "One per line or comma separated"},
			}
		},
		edit: sitedata.Project.Draft,
		parse: func(c echo.Context) (sitedata.NewProject, error) {
			d := sitedata.NewProject{
				Title:               formText(c, "title"),
				Category:            formText(c, "category"),
				Image:               formText(c, "image"),
				Description:         formText(c, "description"),
				DetailedDescription: c.FormValue("detailedDescription"),
				TechStack:           SplitList(c.FormValue("techStack")),
			}
			return d, requireFields("Title", d.Title)
		},
	})

	register(a, g, "/services", resource[sitedata.Service, sitedata.NewService]{
		name:  "services",
		label: "service",
		title: fixedTitle("Services"),
		ops:   func(string) crud.Operations[sitedata.NewService] { return crud.Bind[sitedata.NewService](s.Services) },
		list:  func(echo.Context, string) []sitedata.Service { return s.Services.All() },
		find:  func(_, id string) (sitedata.Service, bool) { return s.Services.Get(id) },
		row: func(sv sitedata.Service) views.Row {
			return views.Row{ID: sv.ID, Title: sv.Title, Detail: sv.Description}
		},
		form: func(d sitedata.NewService) []views.Field {
			return []views.Field{
				{Name: "title", Label: "Title", Type: views.FieldText, Value: d.Title, Required: true},
				{Name: "description", Label: "Description", Type: views.FieldTextarea, Value: d.Description},
			}
		},
		edit: sitedata.Service.Draft,
		parse: func(c echo.Context) (sitedata.NewService, error) {
			d := sitedata.NewService{Title: formText(c, "title"), Description: formText(c, "description")}
			return d, requireFields("Title", d.Title)
		},
	})

	register(a, g, "/team", resource[sitedata.TeamMember, sitedata.NewTeamMember]{
		name:  "team",
		label: "team member",
		title: fixedTitle("Team"),
		ops:   func(string) crud.Operations[sitedata.NewTeamMember] { return crud.Bind[sitedata.NewTeamMember](s.Team) },
		list:  func(echo.Context, string) []sitedata.TeamMember { return s.Team.All() },
		find:  func(_, id string) (sitedata.TeamMember, bool) { return s.Team.Get(id) },
		row: func(m sitedata.TeamMember) views.Row {
			return views.Row{ID: m.ID, Title: m.Name, Detail: m.Title}
		},
		form: func(d sitedata.NewTeamMember) []views.Field {
			return []views.Field{
				{Name: "name", Label: "Name", Type: views.FieldText, Value: d.Name, Required: true},
				{Name: "title", Label: "Role", Type: views.FieldText, Value: d.Title},
				{Name: "bio", Label: "Bio", Type: views.FieldTextarea, Value: d.Bio},
			}
		},
		edit: sitedata.TeamMember.Draft,
		parse: func(c echo.Context) (sitedata.NewTeamMember, error) {
			d := sitedata.NewTeamMember{Name: formText(c, "name"), Title: formText(c, "title"), Bio: formText(c, "bio")}
			return d, requireFields("Name", d.Name)
		},
	})

	register(a, g, "/testimonials", resource[sitedata.Testimonial, sitedata.NewTestimonial]{
		name:  "testimonials",
		label: "testimonial",
		title: fixedTitle("Testimonials"),
		ops:   func(string) crud.Operations[sitedata.NewTestimonial] { return crud.Bind[sitedata.NewTestimonial](s.Testimonials) },
		list:  func(echo.Context, string) []sitedata.Testimonial { return s.Testimonials.All() },
		find:  func(_, id string) (sitedata.Testimonial, bool) { return s.Testimonials.Get(id) },
		row: func(t sitedata.Testimonial) views.Row {
			return views.Row{ID: t.ID, Title: t.Name, Detail: strings.TrimPrefix(t.Title+", "+t.Company, ", ")}
		},
		form: func(d sitedata.NewTestimonial) []views.Field {
			return []views.Field{
				{Name: "quote", Label: "Quote", Type: views.FieldTextarea, Value: d.Quote, Required: true},
				{Name: "name", Label: "Name", Type: views.FieldText, Value: d.Name, Required: true},
				{Name: "title", Label: "Title", Type: views.FieldText, Value: d.Title},
				{Name: "company", Label: "Company", Type: views.FieldText, Value: d.Company},
			}
		},
		edit: sitedata.Testimonial.Draft,
		parse: func(c echo.Context) (sitedata.NewTestimonial, error) {
			d := sitedata.NewTestimonial{
				Quote:   formText(c, "quote"),
				Name:    formText(c, "name"),
				Title:   formText(c, "title"),
				Company: formText(c, "company"),
			}
			return d, requireFields("Quote", d.Quote, "Name", d.Name)
		},
	})

	register(a, g, "/pricing/:serviceID", resource[sitedata.PricingPlan, sitedata.NewPricingPlan]{
		name:  "pricing",
		label: "pricing plan",
		title: func(serviceID string) (string, bool) {
			grp, ok := s.Pricing.Group(serviceID)
			if !ok {
				return "", false
			}
			return grp.ServiceTitle + " pricing", true
		},
		ops: func(serviceID string) crud.Operations[sitedata.NewPricingPlan] {
			return crud.Bind[sitedata.NewPricingPlan](s.Pricing.Plans(serviceID))
		},
		list: func(_ echo.Context, serviceID string) []sitedata.PricingPlan { return s.Pricing.Plans(serviceID).All() },
		find: s.Pricing.Plan,
		row: func(p sitedata.PricingPlan) views.Row {
			detail := strings.TrimSpace(p.Price + " " + p.PriceDetail)
			if p.IsPopular {
				detail += " · popular"
			}
			return views.Row{ID: p.ID, Title: p.Name, Detail: detail}
		},
		form: func(d sitedata.NewPricingPlan) []views.Field {
			return []views.Field{
				{Name: "name", Label: "Name", Type: views.FieldText, Value: d.Name, Required: true},
				{Name: "price", Label: "Price", Type: views.FieldText, Value: d.Price, Required: true},
				{Name: "priceDetail", Label: "Price detail", Type: views.FieldText, Value: d.PriceDetail, Hint: "e.g. /month"},
				{Name: "description", Label: "Description", Type: views.FieldTextarea, Value: d.Description},
				{Name: "features", Label: "Features", Type: views.FieldLines, Value: strings.Join(d.Features, "\n"), Hint: "One per line"},
				{Name: "isPopular", Label: "Highlight as most popular", Type: views.FieldCheckbox, Checked: d.IsPopular},
			}
		},
		edit: sitedata.PricingPlan.Draft,
		parse: func(c echo.Context) (sitedata.NewPricingPlan, error) {
			d := sitedata.NewPricingPlan{
				Name:        formText(c, "name"),
				Price:       formText(c, "price"),
				PriceDetail: formText(c, "priceDetail"),
				Description: formText(c, "description"),
				Features:    SplitLines(c.FormValue("features")),
				IsPopular:   c.FormValue("isPopular") != "",
			}
			return d, requireFields("Name", d.Name, "Price", d.Price)
		},
	})

	register(a, g, "/documents", resource[sitedata.Document, sitedata.NewDocument]{
		name:  "documents",
		label: "document",
		title: fixedTitle("Invoices & quotations"),
		ops:   func(string) crud.Operations[sitedata.NewDocument] { return crud.Bind[sitedata.NewDocument](s.Documents) },
		list: func(c echo.Context, _ string) []sitedata.Document {
			return s.Documents.Filter(c.QueryParam("type"), c.QueryParam("q"))
		},
		find: func(_, id string) (sitedata.Document, bool) { return s.Documents.Get(id) },
		row: func(d sitedata.Document) views.Row {
			return views.Row{
				ID:     d.ID,
				Title:  string(d.DocumentType) + " " + d.DocumentNumber,
				Detail: d.ClientName + " · " + sitedata.FormatCurrency(d.Total, d.Currency) + " · " + d.IssueDate,
			}
		},
		form: documentFields,
		blank: func() sitedata.NewDocument {
			return sitedata.NewDocument{
				DocumentType: sitedata.Invoice,
				Currency:     "USD",
				IssueDate:    time.Now().Format("2006-01-02"),
			}
		},
		parse: parseDocument,
		filter: func(c echo.Context) *views.Filter {
			return &views.Filter{
				Type:   c.QueryParam("type"),
				Search: c.QueryParam("q"),
				Types:  []string{"All", string(sitedata.Invoice), string(sitedata.Quotation)},
			}
		},
	})
}

func fixedTitle(t string) func(string) (string, bool) {
	return func(string) (string, bool) { return t, true }
}

func formText(c echo.Context, name string) string {
	return strings.TrimSpace(c.FormValue(name))
}

// requireFields takes label/value pairs and reports the first blank value.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%s is required.", pairs[i])
		}
	}
	return nil
}

func documentFields(d sitedata.NewDocument) []views.Field {
	items := make([]string, 0, len(d.LineItems))
	for _, it := range d.LineItems {
		items = append(items, it.Description+" | "+formatAmount(it.Quantity)+" | "+formatAmount(it.Price))
	}
	secondary := "Due date"
	if d.DocumentType == sitedata.Quotation {
		secondary = "Valid until"
	}
	return []views.Field{
		{Name: "documentType", Label: "Type", Type: views.FieldSelect, Value: string(d.DocumentType), Options: []string{string(sitedata.Invoice), string(sitedata.Quotation)}},
		{Name: "documentNumber", Label: "Number", Type: views.FieldText, Value: d.DocumentNumber, Required: true},
		{Name: "clientName", Label: "Client name", Type: views.FieldText, Value: d.ClientName, Required: true},
		{Name: "clientEmail", Label: "Client email", Type: views.FieldEmail, Value: d.ClientEmail},
		{Name: "clientAddress", Label: "Client address", Type: views.FieldTextarea, Value: d.ClientAddress},
		{Name: "contactNumber", Label: "Contact number", Type: views.FieldText, Value: d.ContactNumber},
		{Name: "currency", Label: "Currency", Type: views.FieldText, Value: d.Currency, Hint: "ISO code, e.g. USD"},
		{Name: "issueDate", Label: "Issue date", Type: views.FieldDate, Value: d.IssueDate},
		{Name: "secondaryDate", Label: secondary, Type: views.FieldDate, Value: d.SecondaryDate},
		{Name: "lineItems", Label: "Line items", Type: views.FieldLines, Value: strings.Join(items, "\n"), Hint: "description | quantity | price, one per line"},
		{Name: "taxRate", Label: "Tax rate (%)", Type: views.FieldNumber, Value: formatAmount(d.TaxRate)},
		{Name: "notes", Label: "Notes", Type: views.FieldTextarea, Value: d.Notes},
	}
}

func parseDocument(c echo.Context) (sitedata.NewDocument, error) {
	d := sitedata.NewDocument{
		DocumentType:   sitedata.DocumentType(formText(c, "documentType")),
		DocumentNumber: formText(c, "documentNumber"),
		ClientName:     formText(c, "clientName"),
		ClientEmail:    formText(c, "clientEmail"),
		ClientAddress:  formText(c, "clientAddress"),
		ContactNumber:  formText(c, "contactNumber"),
		Currency:       strings.ToUpper(formText(c, "currency")),
		IssueDate:      formText(c, "issueDate"),
		SecondaryDate:  formText(c, "secondaryDate"),
		Notes:          formText(c, "notes"),
	}
	var errs []error
	if d.DocumentType != sitedata.Invoice && d.DocumentType != sitedata.Quotation {
		errs = append(errs, errors.New("Type must be Invoice or Quotation."))
		d.DocumentType = sitedata.Invoice
	}
	if err := requireFields("Number", d.DocumentNumber, "Client name", d.ClientName); err != nil {
		errs = append(errs, err)
	}
	rate, err := parseAmount("Tax rate", c.FormValue("taxRate"))
	if err != nil {
		errs = append(errs, err)
	}
	d.TaxRate = rate
	items, err := parseLineItems(c.FormValue("lineItems"))
	if err != nil {
		errs = append(errs, err)
	}
	d.LineItems = items
	return d, errors.Join(errs...)
}

// parseLineItems reads "description | quantity | price" lines. A missing
// quantity defaults to 1 and a missing price to 0.
func parseLineItems(s string) ([]sitedata.LineItem, error) {
	var items []sitedata.LineItem
	for n, line := range SplitLines(s) {
		parts := strings.Split(line, "|")
		it := sitedata.LineItem{Description: strings.TrimSpace(parts[0]), Quantity: 1}
		if len(parts) > 3 {
			return items, fmt.Errorf("Line %d has too many columns.", n+1)
		}
		if len(parts) > 1 {
			q, err := parseAmount("Line "+strconv.Itoa(n+1)+" quantity", parts[1])
			if err != nil {
				return items, err
			}
			if strings.TrimSpace(parts[1]) != "" {
				it.Quantity = q
			}
		}
		if len(parts) > 2 {
			p, err := parseAmount("Line "+strconv.Itoa(n+1)+" price", parts[2])
			if err != nil {
				return items, err
			}
			it.Price = p
		}
		items = append(items, it)
	}
	return items, nil
}
