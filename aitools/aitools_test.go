package aitools

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

// fakeModels answers every call with canned output and records prompts.
type fakeModels struct {
	reply   string
	chunks  []string
	images  *genai.GenerateImagesResponse
	err     error
	prompts []string
	configs []*genai.GenerateContentConfig
	model   string
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
	}
}

func promptOf(contents []*genai.Content) string {
	var b strings.Builder
	for _, c := range contents {
		for _, p := range c.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompts = append(f.prompts, promptOf(contents))
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return textResponse(f.reply), nil
}

func (f *fakeModels) GenerateContentStream(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.model = model
	f.prompts = append(f.prompts, promptOf(contents))
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, ch := range f.chunks {
			if !yield(textResponse(ch), nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.model = model
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

func TestStrategyStreamsChunks(t *testing.T) {
	fm := &fakeModels{chunks: []string{"### Target Audience\n", "Everyone."}}
	c := newWithModels(fm)

	var got []string
	for chunk, err := range c.Strategy(context.Background(), "coffee subscription") {
		if err != nil {
			t.Fatalf("Strategy failed: %v", err)
		}
		got = append(got, chunk)
	}
	if diff := cmp.Diff(fm.chunks, got); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(fm.prompts[0], `Business Idea: "coffee subscription"`) {
		t.Errorf("prompt = %q, missing business idea", fm.prompts[0])
	}
	if fm.model != DefaultModel {
		t.Errorf("model = %q, want %q", fm.model, DefaultModel)
	}
}

func TestStrategyStreamError(t *testing.T) {
	fm := &fakeModels{chunks: []string{"partial"}, err: errors.New("quota")}
	c := newWithModels(fm)

	var chunks int
	var lastErr error
	for chunk, err := range c.Strategy(context.Background(), "idea") {
		if err != nil {
			lastErr = err
			continue
		}
		if chunk != "" {
			chunks++
		}
	}
	if chunks != 1 || lastErr == nil {
		t.Errorf("chunks = %d, err = %v; want 1 chunk then an error", chunks, lastErr)
	}
}

func TestAnalyzeWebsiteDecodesJSON(t *testing.T) {
	fm := &fakeModels{reply: `{"overallScore": 72, "executiveSummary": "Solid.", "seo": {"score": 80, "feedback": "ok", "recommendations": "add alt text"}, "ux": {"score": 70}, "performance": {"score": 60}, "security": {"score": 78}}`}
	c := newWithModels(fm)

	got, err := c.AnalyzeWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("AnalyzeWebsite failed: %v", err)
	}
	if got.OverallScore != 72 || got.SEO.Recommendations != "add alt text" || got.Performance.Score != 60 {
		t.Errorf("AnalyzeWebsite = %+v", got)
	}
	cfg := fm.configs[0]
	if cfg == nil || cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil {
		t.Errorf("config = %+v, want JSON response schema", cfg)
	}
}

func TestStructuredToolsRejectBadJSON(t *testing.T) {
	c := newWithModels(&fakeModels{reply: "not json"})
	if _, err := c.BlogIdeas(context.Background(), "seo"); err == nil {
		t.Error("BlogIdeas with bad JSON succeeded, want error")
	}
}

func TestEmptyInputs(t *testing.T) {
	fm := &fakeModels{reply: "{}"}
	c := newWithModels(fm)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["AnalyzeWebsite"] = c.AnalyzeWebsite(ctx, " ")
	_, checks["AdCopy"] = c.AdCopy(ctx, AdCopyRequest{ProductName: "x"})
	_, checks["BlogIdeas"] = c.BlogIdeas(ctx, "")
	_, checks["KeywordClusters"] = c.KeywordClusters(ctx, "")
	_, checks["SocialPosts"] = c.SocialPosts(ctx, SocialPostRequest{})
	_, checks["BlogDraft"] = c.BlogDraft(ctx, "")
	_, checks["ImproveText"] = c.ImproveText(ctx, "")
	_, checks["Excerpt"] = c.Excerpt(ctx, "")
	_, checks["SEOMetadata"] = c.SEOMetadata(ctx, "content", "")
	_, checks["GenerateImage"] = c.GenerateImage(ctx, "")
	for name, err := range checks {
		if !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("%s err = %v, want ErrEmptyPrompt", name, err)
		}
	}
	if len(fm.prompts) != 0 {
		t.Errorf("got %d model calls, want 0", len(fm.prompts))
	}
}

func TestNotConfigured(t *testing.T) {
	c, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Enabled() {
		t.Error("Enabled() = true without API key")
	}
	if _, err := c.BlogDraft(context.Background(), "title"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSocialPostsStripsHash(t *testing.T) {
	fm := &fakeModels{reply: `[{"post": "p", "hashtags": ["#growth", " seo "], "visualSuggestion": "v"}]`}
	c := newWithModels(fm)

	got, err := c.SocialPosts(context.Background(), SocialPostRequest{Topic: "t", Platform: "LinkedIn"})
	if err != nil {
		t.Fatalf("SocialPosts failed: %v", err)
	}
	if diff := cmp.Diff([]string{"growth", "seo"}, got[0].Hashtags); diff != "" {
		t.Errorf("hashtags mismatch (-want +got):\n%s", diff)
	}
}

func TestExcerptTruncated(t *testing.T) {
	fm := &fakeModels{reply: strings.Repeat("é", 200)}
	c := newWithModels(fm)

	got, err := c.Excerpt(context.Background(), "content")
	if err != nil {
		t.Fatalf("Excerpt failed: %v", err)
	}
	if n := len([]rune(got)); n != maxExcerptLen {
		t.Errorf("excerpt length = %d, want %d", n, maxExcerptLen)
	}
}

func TestSEOMetadataTruncatesContent(t *testing.T) {
	fm := &fakeModels{reply: `{"metaTitle": "T", "metaDescription": "D"}`}
	c := newWithModels(fm)

	content := strings.Repeat("a", maxSEOContentLen) + "TAIL"
	got, err := c.SEOMetadata(context.Background(), content, "kw")
	if err != nil {
		t.Fatalf("SEOMetadata failed: %v", err)
	}
	if got != (SEOMetadata{MetaTitle: "T", MetaDescription: "D"}) {
		t.Errorf("SEOMetadata = %+v", got)
	}
	if strings.Contains(fm.prompts[0], "TAIL") {
		t.Error("prompt contains content past the truncation limit")
	}
}

func TestGenerateImage(t *testing.T) {
	fm := &fakeModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte{0xff, 0xd8}}}},
	}}
	c := newWithModels(fm, WithImageModel("imagen-test"))

	img, err := c.GenerateImage(context.Background(), "a robot")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if img.MIMEType != "image/jpeg" || len(img.Data) != 2 {
		t.Errorf("image = %+v", img)
	}
	if fm.prompts[0] != "a robot"+imageStyleSuffix {
		t.Errorf("prompt = %q", fm.prompts[0])
	}
	if fm.model != "imagen-test" {
		t.Errorf("model = %q, want imagen-test", fm.model)
	}

	fm.images = &genai.GenerateImagesResponse{}
	if _, err := c.GenerateImage(context.Background(), "a robot"); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}
