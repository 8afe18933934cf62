package aitools

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Strategy streams a markdown digital strategy for a business idea.
func (c *Client) Strategy(ctx context.Context, idea string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := required(idea); err != nil {
			yield("", err)
			return
		}
		if !c.Enabled() {
			yield("", ErrNotConfigured)
			return
		}
		prompt := fmt.Sprintf(`You are a world-class digital marketing strategist. Generate a comprehensive digital strategy for the following business idea. Structure the response in markdown format with clear headings for each section (e.g., ### Target Audience, ### SEO Strategy, ### Content Marketing, ### Social Media, etc.). Business Idea: "%s"`, idea)
		for resp, err := range c.models.GenerateContentStream(ctx, c.model, genai.Text(prompt), nil) {
			if err != nil {
				c.logger.Error("strategy stream failed", zap.Error(err))
				yield("", fmt.Errorf("strategy: %w", err))
				return
			}
			if chunk := resp.Text(); chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

// CategoryScore is one dimension of a website analysis.
type CategoryScore struct {
	Score           int    `json:"score"`
	Feedback        string `json:"feedback"`
	Recommendations string `json:"recommendations"`
}

// WebsiteAnalysis is the scored presence report of a website.
type WebsiteAnalysis struct {
	OverallScore     int           `json:"overallScore"`
	ExecutiveSummary string        `json:"executiveSummary"`
	SEO              CategoryScore `json:"seo"`
	UX               CategoryScore `json:"ux"`
	Performance      CategoryScore `json:"performance"`
	Security         CategoryScore `json:"security"`
}

func categorySchema(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties: map[string]*genai.Schema{
			"score":           {Type: genai.TypeInteger, Description: "A score from 0-100."},
			"feedback":        {Type: genai.TypeString, Description: "Brief feedback on the category."},
			"recommendations": {Type: genai.TypeString, Description: "One key recommendation for improvement."},
		},
		Required: []string{"score", "feedback", "recommendations"},
	}
}

var websiteAnalysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overallScore":     {Type: genai.TypeInteger, Description: "The overall score from 0-100, an average of the categories."},
		"executiveSummary": {Type: genai.TypeString, Description: "A concise, one or two-sentence summary of the site's digital presence."},
		"seo":              categorySchema("Analysis of Search Engine Optimization."),
		"ux":               categorySchema("Analysis of User Experience and Design."),
		"performance":      categorySchema("Analysis of website speed and Core Web Vitals."),
		"security":         categorySchema("Analysis of security protocols like HTTPS and other best practices."),
	},
	Required: []string{"overallScore", "executiveSummary", "seo", "ux", "performance", "security"},
}

// AnalyzeWebsite scores the SEO, UX, performance and security of url.
func (c *Client) AnalyzeWebsite(ctx context.Context, url string) (WebsiteAnalysis, error) {
	var out WebsiteAnalysis
	if err := required(url); err != nil {
		return out, err
	}
	prompt := fmt.Sprintf("Perform a high-level analysis of the website at %s. Evaluate it based on modern standards for SEO, User Experience (UX), Performance, and Security. Provide a score from 0-100 for each category and an overall score. For each category, give brief feedback and one key recommendation. Also provide a concise executive summary. Return the result in JSON format.", url)
	err := c.structured(ctx, "analyze website", prompt, websiteAnalysisSchema, &out)
	return out, err
}

// AdCopy holds generated ad headlines and descriptions.
type AdCopy struct {
	Headlines    []string `json:"headlines"`
	Descriptions []string `json:"descriptions"`
}

// AdCopyRequest describes the product to advertise.
type AdCopyRequest struct {
	ProductName    string `json:"productName"`
	TargetAudience string `json:"targetAudience"`
	KeyFeatures    string `json:"keyFeatures"`
	Tone           string `json:"tone"`
}

var adCopySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"headlines":    stringArray("An array of 3 headline strings."),
		"descriptions": stringArray("An array of 2 description strings."),
	},
	Required: []string{"headlines", "descriptions"},
}

// AdCopy generates 3 headlines and 2 descriptions.
func (c *Client) AdCopy(ctx context.Context, req AdCopyRequest) (AdCopy, error) {
	var out AdCopy
	if err := required(req.ProductName, req.TargetAudience, req.KeyFeatures); err != nil {
		return out, err
	}
	tone := req.Tone
	if tone == "" {
		tone = "Professional"
	}
	prompt := fmt.Sprintf(`Generate ad copy for a product.
  - Product Name: %s
  - Target Audience: %s
  - Key Features: %s
  - Tone: %s
  Provide 3 short, punchy headlines (under 40 characters) and 2 compelling descriptions (under 90 characters).`,
		req.ProductName, req.TargetAudience, req.KeyFeatures, tone)
	err := c.structured(ctx, "ad copy", prompt, adCopySchema, &out)
	return out, err
}

// BlogIdea is a suggested blog post.
type BlogIdea struct {
	Title    string   `json:"title"`
	Hook     string   `json:"hook"`
	Keywords []string `json:"keywords"`
}

var blogIdeasSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":    {Type: genai.TypeString, Description: "The blog post title."},
			"hook":     {Type: genai.TypeString, Description: "A one-sentence hook to grab attention."},
			"keywords": stringArray("An array of 3-5 relevant keywords."),
		},
		Required: []string{"title", "hook", "keywords"},
	},
}

// BlogIdeas suggests 5 posts for topic.
func (c *Client) BlogIdeas(ctx context.Context, topic string) ([]BlogIdea, error) {
	if err := required(topic); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Generate 5 creative, SEO-friendly blog post ideas for the topic: "%s". For each idea, provide a compelling title, a short "hook" to draw the reader in, and a list of 3-5 relevant keywords.`, topic)
	var out []BlogIdea
	err := c.structured(ctx, "blog ideas", prompt, blogIdeasSchema, &out)
	return out, err
}

// KeywordCluster groups long-tail keywords under a theme.
type KeywordCluster struct {
	ClusterTitle string   `json:"clusterTitle"`
	Keywords     []string `json:"keywords"`
}

var keywordClustersSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"clusterTitle": {Type: genai.TypeString, Description: "The title of the keyword cluster."},
			"keywords":     stringArray("A list of 5-8 related keywords."),
		},
		Required: []string{"clusterTitle", "keywords"},
	},
}

// KeywordClusters builds 5 clusters around seed.
func (c *Client) KeywordClusters(ctx context.Context, seed string) ([]KeywordCluster, error) {
	if err := required(seed); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Generate 5 relevant keyword clusters based on the seed keyword: "%s". Each cluster should have a descriptive title and a list of 5-8 related long-tail keywords. This is for building topical authority for an SEO content strategy.`, seed)
	var out []KeywordCluster
	err := c.structured(ctx, "keyword clusters", prompt, keywordClustersSchema, &out)
	return out, err
}

// SocialPost is one variation of a social media post.
type SocialPost struct {
	Post             string   `json:"post"`
	Hashtags         []string `json:"hashtags"`
	VisualSuggestion string   `json:"visualSuggestion"`
}

// SocialPostRequest describes the post to write.
type SocialPostRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Goal     string `json:"goal"`
	Tone     string `json:"tone"`
}

var socialPostsSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"post":             {Type: genai.TypeString, Description: "The text content of the social media post."},
			"hashtags":         stringArray("A list of 3-5 relevant hashtags (without the #)."),
			"visualSuggestion": {Type: genai.TypeString, Description: "A creative suggestion for an accompanying visual."},
		},
		Required: []string{"post", "hashtags", "visualSuggestion"},
	},
}

// SocialPosts writes 2 variations of a post. Hashtags come back without
// the leading '#'.
func (c *Client) SocialPosts(ctx context.Context, req SocialPostRequest) ([]SocialPost, error) {
	if err := required(req.Topic, req.Platform); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Generate 2 variations of a social media post.
  - Topic/URL/Content: %s
  - Platform: %s
  - Goal: %s
  - Tone: %s
  For each variation, provide the post copy, a list of 3-5 relevant hashtags, and a creative suggestion for a visual (image or video).`,
		req.Topic, req.Platform, req.Goal, req.Tone)
	var out []SocialPost
	if err := c.structured(ctx, "social posts", prompt, socialPostsSchema, &out); err != nil {
		return nil, err
	}
	for i := range out {
		for j, h := range out[i].Hashtags {
			out[i].Hashtags[j] = strings.TrimLeft(strings.TrimSpace(h), "#")
		}
	}
	return out, nil
}

func stringArray(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}
