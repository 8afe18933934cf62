package siteengine

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/siteengine/aitools"
	"github.com/eringen/siteengine/blob"
	"github.com/eringen/siteengine/docstore"
	"github.com/eringen/siteengine/seed"
	"github.com/eringen/siteengine/sitedata"
)

const testPassword = "correct horse"

func newTestApp(t *testing.T, db docstore.Store, mutate ...func(*SiteConfig)) *App {
	t.Helper()
	ctx := context.Background()
	if db == nil {
		db = docstore.NewMemory()
	}
	content, err := seed.Parse(seed.Defaults)
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	if _, err := seed.Load(ctx, db, content, nil); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	blobs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	ai, err := aitools.New(ctx, "")
	if err != nil {
		t.Fatalf("ai client: %v", err)
	}

	cfg := SiteConfig{
		Name:          "Northwind Studio",
		URL:           "https://example.com",
		Description:   "Digital marketing that ships.",
		Author:        "Northwind",
		AdminPassword: testPassword,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		FeedbackDelay: time.Hour,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a := New(cfg, ViewFuncs{}, WithDocStore(db), WithBlobStore(blobs), WithAI(ai), WithStaticDir(t.TempDir()))
	if err := a.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

type testClient struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newTestClient(t *testing.T, a *App) *testClient {
	t.Helper()
	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testClient{
		t:   t,
		srv: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	status int
	header http.Header
	body   string
}

func (tc *testClient) do(req *http.Request) response {
	tc.t.Helper()
	resp, err := tc.http.Do(req)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		tc.t.Fatalf("read body: %v", err)
	}
	return response{status: resp.StatusCode, header: resp.Header, body: string(b)}
}

func (tc *testClient) get(path string) response {
	tc.t.Helper()
	req, err := http.NewRequest(http.MethodGet, tc.srv.URL+path, nil)
	if err != nil {
		tc.t.Fatal(err)
	}
	return tc.do(req)
}

// csrf returns the token cookie, fetching a page first when none is set.
func (tc *testClient) csrf() string {
	tc.t.Helper()
	u, _ := url.Parse(tc.srv.URL)
	for i := 0; i < 2; i++ {
		for _, c := range tc.http.Jar.Cookies(u) {
			if c.Name == "_csrf" {
				return c.Value
			}
		}
		tc.get("/admin/")
	}
	tc.t.Fatal("no csrf cookie issued")
	return ""
}

func (tc *testClient) post(path string, form url.Values) response {
	tc.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", tc.csrf())
	req, err := http.NewRequest(http.MethodPost, tc.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		tc.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *testClient) postJSON(path string, body any) response {
	tc.t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		tc.t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.srv.URL+path, bytes.NewReader(b))
	if err != nil {
		tc.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.HasPrefix(path, "/admin/") {
		req.Header.Set("X-CSRF-Token", tc.csrf())
	}
	return tc.do(req)
}

func (tc *testClient) login() {
	tc.t.Helper()
	res := tc.post("/admin/login/", url.Values{"password": {testPassword}})
	if res.status != http.StatusSeeOther {
		tc.t.Fatalf("login status = %d, want 303", res.status)
	}
}

func wantStatus(t *testing.T, res response, code int) {
	t.Helper()
	if res.status != code {
		t.Fatalf("status = %d, want %d; body: %.300s", res.status, code, res.body)
	}
}

func wantBody(t *testing.T, res response, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(res.body, w) {
			t.Errorf("body missing %q", w)
		}
	}
}

func wantRedirect(t *testing.T, res response, location string) {
	t.Helper()
	if res.status != http.StatusSeeOther && res.status != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want a redirect; body: %.300s", res.status, res.body)
	}
	if got := res.header.Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func TestInitRequiresSecrets(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "x"}, ViewFuncs{}, WithDocStore(docstore.NewMemory()))
	if err := a.Init(context.Background()); err == nil {
		t.Fatal("expected an error without an admin password")
	}
	a = New(SiteConfig{AdminPassword: "x"}, ViewFuncs{}, WithDocStore(docstore.NewMemory()))
	if err := a.Init(context.Background()); err == nil {
		t.Fatal("expected an error without a session secret")
	}
}

func TestPublicPages(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))

	res := tc.get("/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "Search Engine Optimization", `href="/blog/future-of-seo/"`, `href="/portfolio/proj-1/"`, "Starter SEO")

	res = tc.get("/blog/future-of-seo/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, `<link rel="canonical" href="https://example.com/blog/future-of-seo/">`, `"@type":"BlogPosting"`)

	wantStatus(t, tc.get("/blog/no-such-post/"), http.StatusNotFound)
	wantStatus(t, tc.get("/portfolio/proj-1/"), http.StatusOK)
	wantStatus(t, tc.get("/portfolio/proj-404/"), http.StatusNotFound)
	wantStatus(t, tc.get("/privacy/"), http.StatusOK)
	wantRedirect(t, tc.get("/blog"), "/#blog")
	wantRedirect(t, tc.get("/privacy"), "/privacy/")

	res = tc.get("/robots.txt")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "Disallow: /admin/", "Sitemap: https://example.com/sitemap.xml")

	res = tc.get("/sitemap.xml")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "https://example.com/blog/future-of-seo/", "https://example.com/portfolio/proj-2/")
	if res.header.Get("Last-Modified") == "" {
		t.Error("sitemap has no Last-Modified header")
	}

	res = tc.get("/feed.xml")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "<rss", "https://example.com/blog/local-seo-success/")

	res = tc.get("/assets/admin.js")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "X-CSRF-Token")
}

func TestContactForm(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)

	res := tc.post("/contact/", url.Values{"name": {"Jane"}})
	wantStatus(t, res, http.StatusBadRequest)
	wantBody(t, res, "All fields are required.", `value="Jane"`)
	if n := len(a.Store.Submissions()); n != 0 {
		t.Fatalf("invalid submission stored: %d submissions", n)
	}

	res = tc.post("/contact/", url.Values{
		"name":          {"Jane Doe"},
		"organization":  {"Acme"},
		"email":         {"jane@example.com"},
		"contactNumber": {"555-0100"},
		"message":       {"We need a new site."},
	})
	wantRedirect(t, res, "/?sent=1#contact")
	wantBody(t, tc.get("/?sent=1"), "Thanks! We will be in touch shortly.")

	subs := a.Store.Submissions()
	if len(subs) != 1 || subs[0].Organization != "Acme" {
		t.Fatalf("submissions = %+v", subs)
	}
	if !a.Store.HasNewSubmission() {
		t.Error("new submission flag not raised")
	}
}

func TestContactFormRequiresCSRF(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	req, _ := http.NewRequest(http.MethodPost, tc.srv.URL+"/contact/", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	wantStatus(t, tc.do(req), http.StatusForbidden)
}

func TestAPIContent(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))

	res := tc.get("/api/services")
	wantStatus(t, res, http.StatusOK)
	var services []sitedata.Service
	if err := json.Unmarshal([]byte(res.body), &services); err != nil {
		t.Fatalf("decode services: %v", err)
	}
	if len(services) != 8 {
		t.Fatalf("got %d services, want 8", len(services))
	}

	res = tc.get("/api/blog/future-of-seo")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, `"slug":"future-of-seo"`)

	res = tc.get("/api/blog/missing")
	wantStatus(t, res, http.StatusNotFound)
	wantBody(t, res, `"message":"Post not found."`)

	for _, path := range []string{"/api/blog", "/api/projects", "/api/team", "/api/testimonials", "/api/pricing"} {
		wantStatus(t, tc.get(path), http.StatusOK)
	}
}

func TestAPIContact(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)

	res := tc.postJSON("/api/contact", map[string]string{"name": "Jane"})
	wantStatus(t, res, http.StatusBadRequest)
	wantBody(t, res, "All fields are required.")

	res = tc.postJSON("/api/contact", sitedata.NewContactSubmission{
		Name:          "Jane",
		Organization:  "Acme",
		Email:         "jane@example.com",
		ContactNumber: "555-0100",
		Message:       "Hello",
	})
	wantStatus(t, res, http.StatusCreated)
	var sub sitedata.ContactSubmission
	if err := json.Unmarshal([]byte(res.body), &sub); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if sub.ID == "" || sub.SubmittedAt.IsZero() {
		t.Errorf("submission not assigned an id and time: %+v", sub)
	}
}

func TestAPIToolUsage(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)

	wantStatus(t, tc.postJSON("/api/usage/roiCalculator", nil), http.StatusNoContent)
	wantStatus(t, tc.postJSON("/api/usage/roiCalculator", nil), http.StatusNoContent)
	wantStatus(t, tc.postJSON("/api/usage/nope", nil), http.StatusBadRequest)

	for _, u := range a.Store.ToolUsage() {
		if u.Tool == sitedata.ROICalculator && u.Count != 2 {
			t.Errorf("roiCalculator count = %d, want 2", u.Count)
		}
	}
}

func TestAPIToolsWithoutKey(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)

	tests := []struct {
		path string
		body any
		want int
	}{
		{"/api/ai/blog-ideas", map[string]string{"topic": "coffee"}, http.StatusServiceUnavailable},
		{"/api/ai/blog-ideas", map[string]string{}, http.StatusBadRequest},
		{"/api/ai/keyword-clusters", map[string]string{"keyword": "seo"}, http.StatusServiceUnavailable},
		{"/api/ai/website-analysis", map[string]string{"url": "https://example.org"}, http.StatusServiceUnavailable},
		{"/api/ai/strategy", map[string]string{"idea": "a bakery"}, http.StatusServiceUnavailable},
		{"/api/ai/strategy", map[string]string{"idea": ""}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		res := tc.postJSON(tt.path, tt.body)
		if res.status != tt.want {
			t.Errorf("POST %s %v = %d, want %d", tt.path, tt.body, res.status, tt.want)
		}
	}

	var strategy int
	for _, u := range a.Store.ToolUsage() {
		if u.Tool == sitedata.StrategyGenerator {
			strategy = u.Count
		}
	}
	if strategy != 2 {
		t.Errorf("strategy usage = %d, want 2", strategy)
	}
}

func TestAPIToolRateLimit(t *testing.T) {
	a := newTestApp(t, nil, func(c *SiteConfig) { c.ToolRateLimit = 2 })
	tc := newTestClient(t, a)

	body := map[string]string{"topic": "coffee"}
	tc.postJSON("/api/ai/blog-ideas", body)
	tc.postJSON("/api/ai/blog-ideas", body)
	res := tc.postJSON("/api/ai/blog-ideas", body)
	wantStatus(t, res, http.StatusTooManyRequests)
}

func TestAdminLogin(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))

	wantRedirect(t, tc.get("/admin/blog/"), "/admin/")

	res := tc.post("/admin/login/", url.Values{"password": {"wrong"}})
	wantStatus(t, res, http.StatusUnauthorized)
	wantBody(t, res, "Invalid password.")

	tc.login()
	res = tc.get("/admin/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "<strong>2</strong> posts", `href="/admin/pricing/sp-1/"`)

	wantRedirect(t, tc.post("/admin/logout/", nil), "/admin/")
	wantRedirect(t, tc.get("/admin/blog/"), "/admin/")
}

func TestAdminLoginRateLimited(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	for i := 0; i < 5; i++ {
		wantStatus(t, tc.post("/admin/login/", url.Values{"password": {"wrong"}}), http.StatusUnauthorized)
	}
	wantStatus(t, tc.post("/admin/login/", url.Values{"password": {testPassword}}), http.StatusTooManyRequests)
}

func TestAdminScriptEndpointsAnswer401(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	res := tc.postJSON("/admin/ai/draft/", map[string]string{"title": "x"})
	wantStatus(t, res, http.StatusUnauthorized)
	wantBody(t, res, "Please sign in again.")
}

func TestAdminBlogLifecycle(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)
	tc.login()

	wantRedirect(t, tc.post("/admin/blog/new/", nil), "/admin/blog/")
	res := tc.get("/admin/blog/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "New post", `action="/admin/blog/save/"`)

	res = tc.post("/admin/blog/save/", url.Values{"title": {"  "}, "content": {"kept"}})
	wantStatus(t, res, http.StatusBadRequest)
	wantBody(t, res, "Title is required.", "kept")

	wantRedirect(t, tc.post("/admin/blog/save/", url.Values{
		"title":   {"Hello Go"},
		"author":  {"Ann"},
		"content": {"# Body"},
	}), "/admin/blog/")
	post, ok := a.Store.Blog.Get("hello-go")
	if !ok {
		t.Fatal("created post not found under slug hello-go")
	}
	if post.Author != "Ann" || post.Date == "" {
		t.Errorf("created post = %+v", post)
	}
	res = tc.get("/admin/blog/")
	wantBody(t, res, "Post created successfully!")
	if strings.Contains(res.body, `action="/admin/blog/save/"`) {
		t.Error("form still open after a successful create")
	}

	wantRedirect(t, tc.post("/admin/blog/edit/hello-go/", nil), "/admin/blog/")
	res = tc.get("/admin/blog/")
	wantBody(t, res, `name="id" value="hello-go"`, `value="Hello Go"`, "Update post")

	wantRedirect(t, tc.post("/admin/blog/save/", url.Values{
		"id":      {"hello-go"},
		"title":   {"Hello Go, Revised"},
		"content": {"# Body"},
	}), "/admin/blog/")
	post, _ = a.Store.Blog.Get("hello-go")
	if post.Title != "Hello Go, Revised" {
		t.Errorf("title after update = %q", post.Title)
	}
	wantBody(t, tc.get("/admin/blog/"), "Post updated successfully!")

	res = tc.post("/admin/blog/delete/hello-go/", nil)
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "Are you sure you want to delete this post? This action cannot be undone.")
	if _, ok := a.Store.Blog.Get("hello-go"); !ok {
		t.Fatal("post removed without confirmation")
	}

	wantRedirect(t, tc.post("/admin/blog/delete/hello-go/", url.Values{"confirm": {"yes"}}), "/admin/blog/")
	if _, ok := a.Store.Blog.Get("hello-go"); ok {
		t.Fatal("post still present after a confirmed delete")
	}
	wantBody(t, tc.get("/admin/blog/"), "Post deleted successfully!")

	wantStatus(t, tc.post("/admin/blog/delete/hello-go/", url.Values{"confirm": {"yes"}}), http.StatusNotFound)
	wantStatus(t, tc.post("/admin/blog/edit/hello-go/", nil), http.StatusNotFound)
}

func TestAdminCancelAndViewChange(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	tc.login()

	tc.post("/admin/blog/new/", nil)
	wantRedirect(t, tc.post("/admin/blog/cancel/", nil), "/admin/blog/")
	if strings.Contains(tc.get("/admin/blog/").body, `action="/admin/blog/save/"`) {
		t.Error("form still open after cancel")
	}

	tc.post("/admin/blog/new/", nil)
	wantStatus(t, tc.get("/admin/projects/"), http.StatusOK)
	if strings.Contains(tc.get("/admin/blog/").body, `action="/admin/blog/save/"`) {
		t.Error("form survived leaving the view")
	}
}

func TestAdminServicesAreUpdateOnly(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)
	tc.login()

	res := tc.get("/admin/services/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "/admin/services/edit/seo/")
	for _, unwanted := range []string{"/admin/services/new/", "/admin/services/delete/seo/"} {
		if strings.Contains(res.body, unwanted) {
			t.Errorf("services page offers %q", unwanted)
		}
	}
	wantStatus(t, tc.post("/admin/services/new/", nil), http.StatusMethodNotAllowed)

	tc.post("/admin/services/edit/seo/", nil)
	wantRedirect(t, tc.post("/admin/services/save/", url.Values{
		"id":          {"seo"},
		"title":       {"SEO"},
		"description": {"Rank higher."},
	}), "/admin/services/")
	sv, _ := a.Store.Services.Get("seo")
	if sv.Title != "SEO" || sv.Icon == "" {
		t.Errorf("service after update = %+v", sv)
	}
}

func TestAdminPricingPlans(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)
	tc.login()

	wantStatus(t, tc.get("/admin/pricing/no-such-service/"), http.StatusNotFound)

	res := tc.get("/admin/pricing/sp-1/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "Search Engine Optimization pricing", "Starter SEO")

	tc.post("/admin/pricing/sp-1/new/", nil)
	wantRedirect(t, tc.post("/admin/pricing/sp-1/save/", url.Values{
		"name":      {"Enterprise SEO"},
		"price":     {"$9,999"},
		"features":  {"Dedicated team\n\nWeekly calls"},
		"isPopular": {"on"},
	}), "/admin/pricing/sp-1/")

	grp, _ := a.Store.Pricing.Group("sp-1")
	var found *sitedata.PricingPlan
	for i := range grp.Plans {
		if grp.Plans[i].Name == "Enterprise SEO" {
			found = &grp.Plans[i]
		}
	}
	if found == nil {
		t.Fatalf("new plan missing from group: %+v", grp.Plans)
	}
	if !found.IsPopular || len(found.Features) != 2 {
		t.Errorf("new plan = %+v", *found)
	}
	other, _ := a.Store.Pricing.Group("sp-2")
	for _, p := range other.Plans {
		if p.Name == "Enterprise SEO" {
			t.Error("plan added to the wrong service")
		}
	}
}

func TestAdminDocuments(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)
	tc.login()

	tc.post("/admin/documents/new/", nil)
	res := tc.get("/admin/documents/")
	wantBody(t, res, "<option selected>Invoice</option>", `value="USD"`)

	res = tc.post("/admin/documents/save/", url.Values{
		"documentType":   {"Invoice"},
		"documentNumber": {"INV-7"},
		"clientName":     {"Acme"},
		"lineItems":      {"Design | 2 | abc"},
	})
	wantStatus(t, res, http.StatusBadRequest)
	wantBody(t, res, "Line 1 price must be a number")

	wantRedirect(t, tc.post("/admin/documents/save/", url.Values{
		"documentType":   {"Invoice"},
		"documentNumber": {"INV-7"},
		"clientName":     {"Acme"},
		"currency":       {"usd"},
		"issueDate":      {"2024-05-01"},
		"lineItems":      {"Design | 2 | 100\nHosting"},
		"taxRate":        {"10"},
	}), "/admin/documents/")

	docs := a.Store.Documents.All()
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Total != 220 || docs[0].Currency != "USD" || len(docs[0].LineItems) != 2 {
		t.Errorf("document = %+v", docs[0])
	}

	wantStatus(t, tc.post("/admin/documents/edit/"+docs[0].ID+"/", nil), http.StatusMethodNotAllowed)

	wantBody(t, tc.get("/admin/documents/?type=Invoice&q=acme"), "Invoice INV-7", "220")
	if strings.Contains(tc.get("/admin/documents/?type=Quotation").body, "INV-7") {
		t.Error("quotation filter lists an invoice")
	}
}

func TestAdminSubmissions(t *testing.T) {
	a := newTestApp(t, nil)
	tc := newTestClient(t, a)
	tc.login()

	sub, err := a.Store.AddContactSubmission(context.Background(), sitedata.NewContactSubmission{
		Name: "Jane", Organization: "Acme", Email: "jane@example.com", ContactNumber: "1", Message: "Hi",
	})
	if err != nil {
		t.Fatal(err)
	}
	wantBody(t, tc.get("/admin/"), "new-lead")

	res := tc.get("/admin/submissions/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "jane@example.com")
	if a.Store.HasNewSubmission() {
		t.Error("new submission flag not cleared by the submissions view")
	}

	wantRedirect(t, tc.post("/admin/submissions/delete/"+sub.ID+"/", nil), "/admin/submissions/")
	if len(a.Store.Submissions()) != 0 {
		t.Error("submission not deleted")
	}
	wantStatus(t, tc.post("/admin/submissions/delete/"+sub.ID+"/", nil), http.StatusNotFound)
}

func TestAdminMetrics(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	tc.login()
	tc.get("/")
	res := tc.get("/admin/metrics/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "siteengine_http_requests_total", "go_goroutines")
}

func TestAdminAIWithoutKey(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))
	tc.login()
	wantStatus(t, tc.postJSON("/admin/ai/draft/", map[string]string{"title": "Go"}), http.StatusServiceUnavailable)
	wantStatus(t, tc.postJSON("/admin/ai/excerpt/", map[string]string{}), http.StatusBadRequest)
	wantStatus(t, tc.postJSON("/admin/ai/image/", map[string]string{"prompt": "a cat"}), http.StatusServiceUnavailable)
}

// gatedStore blocks Create calls of the blog kind until release is closed.
type gatedStore struct {
	docstore.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedStore) Create(ctx context.Context, kind string, doc docstore.Document) (docstore.Document, error) {
	if kind == sitedata.KindBlog {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.Store.Create(ctx, kind, doc)
}

func TestAdminRejectsChangesWhileSaving(t *testing.T) {
	gate := &gatedStore{Store: docstore.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	a := newTestApp(t, gate)
	tc := newTestClient(t, a)
	tc.login()
	tc.post("/admin/blog/new/", nil)

	done := make(chan response, 1)
	form := url.Values{"title": {"Slow Post"}, "_csrf": {tc.csrf()}}
	go func() {
		req, _ := http.NewRequest(http.MethodPost, tc.srv.URL+"/admin/blog/save/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := tc.http.Do(req)
		if err != nil {
			done <- response{}
			return
		}
		resp.Body.Close()
		done <- response{status: resp.StatusCode}
	}()

	select {
	case <-gate.entered:
	case <-time.After(5 * time.Second):
		close(gate.release)
		t.Fatal("save never reached the store")
	}
	res := tc.post("/admin/blog/new/", nil)
	close(gate.release)
	wantStatus(t, res, http.StatusConflict)

	if r := <-done; r.status != http.StatusSeeOther {
		t.Fatalf("slow save status = %d, want 303", r.status)
	}
	if _, ok := a.Store.Blog.Get("slow-post"); !ok {
		t.Error("slow post not stored")
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (tc *testClient) upload(name string, data []byte) response {
	tc.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", name)
	if err != nil {
		tc.t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	req, err := http.NewRequest(http.MethodPost, tc.srv.URL+"/admin/images/", &body)
	if err != nil {
		tc.t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-CSRF-Token", tc.csrf())
	return tc.do(req)
}

func TestImageUploadAndMedia(t *testing.T) {
	tc := newTestClient(t, newTestApp(t, nil))

	wantStatus(t, tc.upload("Team Photo.png", testPNG(t, 10, 10)), http.StatusUnauthorized)

	tc.login()
	res := tc.upload("Team Photo.png", testPNG(t, 1000, 500))
	wantStatus(t, res, http.StatusCreated)
	var info imageInfo
	if err := json.Unmarshal([]byte(res.body), &info); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if info.URL != "/media/uploads/team-photo.jpg" || info.Width != 800 || info.Height != 400 {
		t.Errorf("upload = %+v", info)
	}

	res = tc.upload("Team Photo.png", testPNG(t, 20, 20))
	wantStatus(t, res, http.StatusCreated)
	wantBody(t, res, `"url":"/media/uploads/team-photo-2.jpg"`)

	wantStatus(t, tc.upload("notes.txt", []byte("not an image")), http.StatusBadRequest)

	media := tc.get(info.URL)
	wantStatus(t, media, http.StatusOK)
	if ct := media.header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("media Content-Type = %q", ct)
	}
	wantStatus(t, tc.get("/media/uploads/missing.jpg"), http.StatusNotFound)

	res = tc.get("/admin/images/")
	wantStatus(t, res, http.StatusOK)
	wantBody(t, res, "uploads/team-photo.jpg", "uploads/team-photo-2.jpg")

	req, _ := http.NewRequest(http.MethodPost, tc.srv.URL+"/admin/images/delete/uploads/team-photo.jpg", nil)
	req.Header.Set("X-CSRF-Token", tc.csrf())
	wantStatus(t, tc.do(req), http.StatusNoContent)
	wantStatus(t, tc.get(info.URL), http.StatusNotFound)
}

func TestProcessImage(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{400, 300, 400, 300},
		{1600, 900, 800, 450},
		{800, 10, 800, 10},
	}
	for _, tt := range tests {
		info, data, err := processImage(bytes.NewReader(testPNG(t, tt.w, tt.h)))
		if err != nil {
			t.Fatalf("processImage(%dx%d): %v", tt.w, tt.h, err)
		}
		if info.Width != tt.wantW || info.Height != tt.wantH {
			t.Errorf("processImage(%dx%d) = %dx%d, want %dx%d", tt.w, tt.h, info.Width, info.Height, tt.wantW, tt.wantH)
		}
		if info.Size != int64(len(data)) {
			t.Errorf("size %d does not match %d encoded bytes", info.Size, len(data))
		}
	}
}

func TestImageKey(t *testing.T) {
	tests := []struct{ name, want string }{
		{"Team Photo.PNG", "uploads/team-photo.jpg"},
		{"Café menu.jpeg", "uploads/cafe-menu.jpg"},
		{"???.png", "uploads/image.jpg"},
	}
	for _, tt := range tests {
		if got := imageKey(uploadsPrefix, tt.name); got != tt.want {
			t.Errorf("imageKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
