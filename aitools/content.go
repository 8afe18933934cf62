package aitools

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	maxExcerptLen    = 160
	maxSEOContentLen = 3000
	imageStyleSuffix = ", digital art, high detail, cinematic lighting, professional quality"
)

// BlogDraft writes a markdown blog post for title.
func (c *Client) BlogDraft(ctx context.Context, title string) (string, error) {
	if err := required(title); err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`You are a professional blog writer and SEO expert. Write a comprehensive, well-structured blog post in markdown format about the following title: "%s". The post should have a compelling introduction, several detailed sections with markdown headings (e.g., ### Section Title), and a strong concluding paragraph. Ensure the content is engaging, informative, and ready to be published.`, title)
	return c.text(ctx, "blog draft", prompt)
}

// ImproveText edits text for grammar and clarity, keeping its tone.
func (c *Client) ImproveText(ctx context.Context, text string) (string, error) {
	if err := required(text); err != nil {
		return "", err
	}
	prompt := "You are an expert editor. Review the following text and improve its grammar, clarity, flow, and overall readability while maintaining the original tone and meaning. Return only the improved text. Text to improve:\n\n" + text
	return c.text(ctx, "improve text", prompt)
}

// Excerpt summarises a post in at most 160 characters.
func (c *Client) Excerpt(ctx context.Context, content string) (string, error) {
	if err := required(content); err != nil {
		return "", err
	}
	prompt := "You are a content strategist. Read the following blog post and write a compelling, concise excerpt (summary) of no more than 160 characters. The excerpt should be engaging and entice users to read the full article. Return only the excerpt text. Blog post content:\n\n" + content
	out, err := c.text(ctx, "excerpt", prompt)
	if err != nil {
		return "", err
	}
	return truncate(out, maxExcerptLen), nil
}

// SEOMetadata is a generated meta title and description.
type SEOMetadata struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

var seoSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"metaTitle":       {Type: genai.TypeString, Description: "The optimized meta title (50-60 characters)."},
		"metaDescription": {Type: genai.TypeString, Description: "The optimized meta description (140-160 characters)."},
	},
	Required: []string{"metaTitle", "metaDescription"},
}

// SEOMetadata derives a meta title and description from the first 3000
// characters of content.
func (c *Client) SEOMetadata(ctx context.Context, content, focusKeyword string) (SEOMetadata, error) {
	var out SEOMetadata
	if err := required(content, focusKeyword); err != nil {
		return out, err
	}
	prompt := fmt.Sprintf(`Act as an expert SEO copywriter. Based on the following blog post content and focus keyword, generate an optimized meta title and meta description.

Rules:
- The meta title must be compelling and around 50-60 characters.
- The meta description must be engaging, around 140-160 characters, and include a call-to-action if appropriate.
- Both the title and description should naturally include the focus keyword.

Focus Keyword: "%s"

Blog Content:
---
%s
---

Return the result in JSON format.`, focusKeyword, truncate(content, maxSEOContentLen))
	err := c.structured(ctx, "seo metadata", prompt, seoSchema, &out)
	return out, err
}

// GeneratedImage is an encoded image returned by the image model.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// GenerateImage renders a 16:9 JPEG illustration for prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (GeneratedImage, error) {
	if err := required(prompt); err != nil {
		return GeneratedImage{}, err
	}
	if !c.Enabled() {
		return GeneratedImage{}, ErrNotConfigured
	}
	resp, err := c.models.GenerateImages(ctx, c.imageModel, prompt+imageStyleSuffix, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "16:9",
	})
	if err != nil {
		c.logger.Error("image generation failed", zap.Error(err))
		return GeneratedImage{}, fmt.Errorf("generate image: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return GeneratedImage{}, ErrNoImage
	}
	img := resp.GeneratedImages[0].Image
	mt := img.MIMEType
	if mt == "" {
		mt = "image/jpeg"
	}
	return GeneratedImage{Data: img.ImageBytes, MIMEType: mt}, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
