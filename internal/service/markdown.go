package service

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	rendererhtml "github.com/yuin/goldmark/renderer/html"
)

// replyRenderer turns model replies into HTML for the chat widget. Raw HTML in the reply is
// dropped, since the text comes from an upstream model.
type replyRenderer struct {
	md goldmark.Markdown
}

func newReplyRenderer() *replyRenderer {
	return &replyRenderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(rendererhtml.WithHardWraps()),
	)}
}

func (r *replyRenderer) Render(markdown string) (string, error) {
	var out bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}
