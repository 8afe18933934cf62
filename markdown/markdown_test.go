package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, src string) string {
	t.Helper()
	got, err := Render(src)
	if err != nil {
		t.Fatalf("Render(%q) failed: %v", src, err)
	}
	return strings.TrimSpace(got)
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<p><strong>bold</strong></p>"},
		{"__bold__", "<p><strong>bold</strong></p>"},
		{"*italic*", "<p><em>italic</em></p>"},
		{"_italic_", "<p><em>italic</em></p>"},
		{"**bold *italic* text**", "<p><strong>bold <em>italic</em> text</strong></p>"},
		{"use `fmt.Println` here", "<p>use <code>fmt.Println</code> here</p>"},
		{"`**not bold**`", "<p><code>**not bold**</code></p>"},
		{"~~gone~~", "<p><del>gone</del></p>"},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", "<h1>Heading 1</h1>"},
		{"## Heading 2", "<h2>Heading 2</h2>"},
		{"### Heading 3", "<h3>Heading 3</h3>"},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render(t, "```go\nfmt.Println(\"hello\")\n```")
	if !strings.Contains(got, "<pre><code") {
		t.Errorf("code block missing pre/code: %q", got)
	}
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, "fmt.Println(&#34;hello&#34;)") {
		t.Errorf("code block content not escaped: %q", got)
	}
}

func TestRenderLinks(t *testing.T) {
	got := render(t, "[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)")
	if !strings.Contains(got, `href="https://en.wikipedia.org/wiki/Some_Article_Title"`) {
		t.Errorf("underscores in URL mangled: %q", got)
	}
	if !strings.Contains(got, `class="`+LinkClass+`"`) {
		t.Errorf("link missing class: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("external link should open in new tab: %q", got)
	}

	local := render(t, "[about](/privacy/)")
	if strings.Contains(local, "_blank") {
		t.Errorf("local link should not open in new tab: %q", local)
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"- item 1\n- item 2", "<ul>\n<li>item 1</li>\n<li>item 2</li>\n</ul>"},
		{"1. first\n2. second", "<ol>\n<li>first</li>\n<li>second</li>\n</ol>"},
		{"1. **bold** item", "<ol>\n<li><strong>bold</strong> item</li>\n</ol>"},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderStripsUnsafeContent(t *testing.T) {
	tests := []string{
		"<script>alert(1)</script>",
		"[x](javascript:alert(1))",
		`<img src="x" onerror="alert(1)">`,
	}
	for _, input := range tests {
		got := render(t, input)
		if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") || strings.Contains(got, "onerror") {
			t.Errorf("Render(%q) = %q, unsafe content survived", input, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Component("### Target Audience").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "<h3>Target Audience</h3>" {
		t.Errorf("Component output = %q", got)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("## Title\n\nSome **bold** text and a [link](https://example.com).")
	want := "Title Some bold text and a link."
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}
