// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns the Markdown written by the AI gateway into HTML
// documents and pulls out the links it cites.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md renders GitHub flavored Markdown; reports use tables and lists.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts Markdown to an HTML fragment.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="fa" dir="rtl">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Subtitle}}
<p>{{.Subtitle}}</p>
{{- end}}
{{.Body}}
</body>
</html>
`))

// Page renders Markdown as a standalone right-to-left HTML document.
func Page(title, subtitle, source string) (string, error) {
	body, err := HTML(source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title    string
		Subtitle string
		Body     template.HTML
	}{title, subtitle, template.HTML(body)})
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}

// Links returns the external link destinations in Markdown source in
// document order, without duplicates.
func Links(source string) []string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	seen := map[string]bool{}
	var links []string
	add := func(target string) {
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			return
		}
		if !seen[target] {
			seen[target] = true
			links = append(links, target)
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			add(string(v.Destination))
		case *ast.AutoLink:
			target := string(v.URL(src))
			add(target)
		}
		return ast.WalkContinue, nil
	})
	return links
}
