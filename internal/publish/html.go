package publish

import (
        "bytes"
        "html/template"
        "strings"

        "github.com/yuin/goldmark"
        emoji "github.com/yuin/goldmark-emoji"
        "github.com/yuin/goldmark/extension"
        "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in descriptions is escaped: html.WithUnsafe is not set.
var markdownRenderer = goldmark.New(
        goldmark.WithExtensions(
                extension.GFM,
                emoji.Emoji,
        ),
        goldmark.WithRendererOptions(
                html.WithHardWraps(),
        ),
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 52rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
pre { background: #f5f5f5; padding: .75rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

func renderMarkdownHTML(src string) template.HTML {
        src = strings.TrimSpace(src)
        if src == "" {
                return template.HTML("")
        }
        var b bytes.Buffer
        if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
                return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
        }
        return template.HTML(b.String())
}

// RenderHTMLPage wraps the rendered Markdown in a standalone page.
func RenderHTMLPage(title, md string) (string, error) {
        var b bytes.Buffer
        err := pageTemplate.Execute(&b, struct {
                Title string
                Body  template.HTML
        }{Title: title, Body: renderMarkdownHTML(md)})
        if err != nil {
                return "", err
        }
        return b.String(), nil
}
