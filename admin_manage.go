package siteengine

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/siteengine/crud"
	"github.com/eringen/siteengine/views"
)

// resource describes how one entity kind is listed, edited and parsed in the
// admin panel. Scope is the path parameter of nested kinds (the service id
// of pricing plans) and empty otherwise.
type resource[T crud.Identifiable, U any] struct {
	// name is the route segment and the console view key.
	name  string
	label string
	// title returns the page heading, or false when scope does not exist.
	title func(scope string) (string, bool)
	ops   func(scope string) crud.Operations[U]
	list  func(c echo.Context, scope string) []T
	find  func(scope, id string) (T, bool)
	row   func(T) views.Row
	form  func(U) []views.Field
	// edit returns the editable fields of an item; nil for kinds that
	// cannot be updated.
	edit func(T) U
	// blank returns the values of an empty create form.
	blank  func() U
	parse  func(c echo.Context) (U, error)
	filter func(c echo.Context) *views.Filter
	assist bool
}

// register adds the list and action routes of r under prefix.
func register[T crud.Identifiable, U any](a *App, g *echo.Group, prefix string, r resource[T, U]) {
	h := &resourceHandler[T, U]{app: a, r: r, param: scopeParam(prefix)}
	g.GET(prefix+"/", h.list)
	g.POST(prefix+"/new/", h.create)
	g.POST(prefix+"/edit/:id/", h.edit)
	g.POST(prefix+"/save/", h.save)
	g.POST(prefix+"/delete/:id/", h.delete)
	g.POST(prefix+"/cancel/", h.cancel)
}

func scopeParam(prefix string) string {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] == ':' {
			return prefix[i+1:]
		}
		if prefix[i] == '/' {
			break
		}
	}
	return ""
}

type resourceHandler[T crud.Identifiable, U any] struct {
	app   *App
	r     resource[T, U]
	param string
}

// view resolves the scope, the page title and the session's manager.
type resourceView[T crud.Identifiable, U any] struct {
	scope string
	title string
	base  string
	key   string
	cs    *console
	m     *crud.Manager[T, U]
}

func (h *resourceHandler[T, U]) view(c echo.Context) (*resourceView[T, U], error) {
	scope := ""
	if h.param != "" {
		scope = c.Param(h.param)
	}
	title, ok := h.r.title(scope)
	if !ok {
		return nil, echo.ErrNotFound
	}
	key := h.r.name
	base := "/admin/" + h.r.name
	if scope != "" {
		key += "/" + scope
		base += "/" + scope
	}
	cs, err := h.app.consoleFor(c)
	if err != nil {
		return nil, err
	}
	m := managerFor(cs, key, func() *crud.Manager[T, U] {
		return crud.New[T](h.r.ops(scope),
			crud.WithFeedbackDelay(h.app.Config.FeedbackDelay),
			crud.WithLogger(h.app.Logger.Named("crud")),
		)
	})
	return &resourceView[T, U]{scope: scope, title: title, base: base, key: key, cs: cs, m: m}, nil
}

func (h *resourceHandler[T, U]) back(c echo.Context, v *resourceView[T, U]) error {
	return c.Redirect(http.StatusSeeOther, v.base+"/")
}

func (h *resourceHandler[T, U]) list(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.cs.enter(v.key)
	return h.render(c, v, http.StatusOK, nil, nil, nil)
}

func (h *resourceHandler[T, U]) create(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.cs.enter(v.key)
	if v.m.Loading() {
		return c.String(http.StatusConflict, "A change is still being saved.")
	}
	if err := v.m.CreateNew(); err != nil {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "Cannot create "+h.r.label+" here.")
	}
	return h.back(c, v)
}

func (h *resourceHandler[T, U]) edit(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.cs.enter(v.key)
	if v.m.Loading() {
		return c.String(http.StatusConflict, "A change is still being saved.")
	}
	item, ok := h.r.find(v.scope, c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	if err := v.m.Edit(item); err != nil {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "Cannot edit "+h.r.label+" here.")
	}
	return h.back(c, v)
}

func (h *resourceHandler[T, U]) save(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.cs.enter(v.key)
	if v.m.Loading() {
		return c.String(http.StatusConflict, "A change is still being saved.")
	}
	data, err := h.r.parse(c)
	if err != nil {
		return h.render(c, v, http.StatusBadRequest, &data, &crud.Feedback{Kind: crud.Error, Message: err.Error()}, nil)
	}
	var original *T
	if id := c.FormValue("id"); id != "" {
		st := v.m.State()
		if st.Editing != nil && (*st.Editing).Identity() == id {
			original = st.Editing
		} else if item, ok := h.r.find(v.scope, id); ok {
			original = &item
		} else {
			return echo.ErrNotFound
		}
	}
	v.m.Save(c.Request().Context(), data, original, h.r.label)
	return h.back(c, v)
}

func (h *resourceHandler[T, U]) delete(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.cs.enter(v.key)
	if v.m.Loading() {
		return c.String(http.StatusConflict, "A change is still being saved.")
	}
	item, ok := h.r.find(v.scope, c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	var prompt string
	confirmed := c.FormValue("confirm") == "yes"
	_, attempted := v.m.Delete(c.Request().Context(), item, h.r.label, func(p string) bool {
		prompt = p
		return confirmed
	})
	if !attempted && prompt != "" {
		return h.render(c, v, http.StatusOK, nil, nil, &views.Confirm{ID: item.Identity(), Prompt: prompt})
	}
	return h.back(c, v)
}

func (h *resourceHandler[T, U]) cancel(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	v.m.Cancel()
	return h.back(c, v)
}

// render draws the management page from the manager state. A non-nil draft
// and feedback override the state, as for a form that failed to parse.
func (h *resourceHandler[T, U]) render(c echo.Context, v *resourceView[T, U], code int, draft *U, fb *crud.Feedback, confirm *views.Confirm) error {
	st := v.m.State()
	page := views.ManagePage{
		Site:      h.app.site(),
		CSRF:      CsrfToken(c),
		Title:     v.title,
		Label:     h.r.label,
		Base:      v.base,
		CanCreate: v.m.CanCreate(),
		CanUpdate: v.m.CanUpdate() && h.r.edit != nil,
		CanDelete: v.m.CanDelete(),
		Loading:   st.Loading,
		Feedback:  st.Feedback,
		Confirm:   confirm,
		Assist:    h.r.assist && h.app.AI.Enabled(),
	}
	if fb != nil {
		page.Feedback = fb
	}
	if h.r.filter != nil {
		page.Filter = h.r.filter(c)
	}
	for _, item := range h.r.list(c, v.scope) {
		page.Rows = append(page.Rows, h.r.row(item))
	}

	if st.FormVisible || draft != nil {
		var values U
		form := &views.Form{}
		switch {
		case draft != nil:
			values = *draft
			form.ID = c.FormValue("id")
		case st.Draft != nil:
			values = *st.Draft
		case st.Editing != nil && h.r.edit != nil:
			values = h.r.edit(*st.Editing)
		case h.r.blank != nil:
			values = h.r.blank()
		}
		if draft == nil && st.Editing != nil {
			form.ID = (*st.Editing).Identity()
		}
		form.Fields = h.r.form(values)
		page.Form = form
	}
	return RenderStatus(c, code, h.app.Views.AdminManage(page))
}
