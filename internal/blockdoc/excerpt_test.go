package blockdoc

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerpt_LongParagraph_TruncatesWithEllipsis(t *testing.T) {
	source := strings.Repeat("a", 200)
	raw := fmt.Sprintf(`{"blocks":[{"type":"paragraph","data":{"text":"%s"}}]}`, source)

	got := Excerpt(raw, 150)

	if !strings.HasSuffix(got, ellipsis) {
		t.Fatalf("excerpt = %q, want ellipsis suffix", got)
	}
	body := strings.TrimSuffix(got, ellipsis)
	if utf8.RuneCountInString(body) != 150 {
		t.Errorf("body length = %d, want 150", utf8.RuneCountInString(body))
	}
	if body != source[:150] {
		t.Errorf("body = %q, want first 150 chars of source", body)
	}
}

func TestExcerpt_ShortParagraph_ReturnedVerbatim(t *testing.T) {
	raw := `{"blocks":[{"type":"paragraph","data":{"text":"short text"}}]}`

	got := Excerpt(raw, 150)

	if got != "short text" {
		t.Errorf("excerpt = %q, want %q", got, "short text")
	}
}

func TestExcerpt_StripsInlineMarkup(t *testing.T) {
	raw := `{"blocks":[{"type":"paragraph","data":{"text":"a <b>bold</b> move"}}]}`

	got := Excerpt(raw, 150)

	if strings.Contains(got, "<b>") {
		t.Errorf("excerpt = %q, markup should be stripped", got)
	}
	if !strings.Contains(got, "bold") {
		t.Errorf("excerpt = %q, text content should survive", got)
	}
}

func TestExcerpt_PrefersFirstParagraphOverHeader(t *testing.T) {
	raw := `{"blocks":[
		{"type":"header","data":{"text":"The Title","level":1}},
		{"type":"paragraph","data":{"text":"The body."}}
	]}`

	got := Excerpt(raw, 150)

	if got != "The body." {
		t.Errorf("excerpt = %q, want first paragraph text", got)
	}
}

func TestExcerpt_NoParagraph_UsesFirstTextualBlock(t *testing.T) {
	raw := `{"blocks":[
		{"type":"image","data":{"file":{"url":"/uploads/x.png"}}},
		{"type":"header","data":{"text":"Heading","level":2}}
	]}`

	got := Excerpt(raw, 150)

	if got != "Heading" {
		t.Errorf("excerpt = %q, want header text", got)
	}
}

func TestExcerpt_ListBlock_JoinsItems(t *testing.T) {
	raw := `{"blocks":[{"type":"list","data":{"style":"unordered","items":["one","two"]}}]}`

	got := Excerpt(raw, 150)

	if got != "one two" {
		t.Errorf("excerpt = %q, want %q", got, "one two")
	}
}

func TestExcerpt_PlainText_TruncatesRawString(t *testing.T) {
	source := strings.Repeat("x", 60)

	got := Excerpt(source, 50)

	want := source[:50] + ellipsis
	if got != want {
		t.Errorf("excerpt = %q, want %q", got, want)
	}
}

func TestExcerpt_PlainTextShorterThanLimit_Verbatim(t *testing.T) {
	got := Excerpt("legacy plain text post", 150)

	if got != "legacy plain text post" {
		t.Errorf("excerpt = %q, want verbatim input", got)
	}
}

func TestExcerpt_MultibyteRunes_TruncatesOnRuneBoundary(t *testing.T) {
	source := strings.Repeat("あ", 40)
	raw := fmt.Sprintf(`{"blocks":[{"type":"paragraph","data":{"text":"%s"}}]}`, source)

	got := Excerpt(raw, 10)

	want := strings.Repeat("あ", 10) + ellipsis
	if got != want {
		t.Errorf("excerpt = %q, want %q", got, want)
	}
}

func TestExcerpt_EmptyDocument_ReturnsEmpty(t *testing.T) {
	got := Excerpt(`{"blocks":[]}`, 150)

	if got != "" {
		t.Errorf("excerpt = %q, want empty", got)
	}
}

func TestExcerpt_ZeroMaxLen_ReturnsEmpty(t *testing.T) {
	got := Excerpt("whatever", 0)

	if got != "" {
		t.Errorf("excerpt = %q, want empty", got)
	}
}
