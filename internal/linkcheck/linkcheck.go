// Package linkcheck extracts link destinations from a README and reports
// relative references that will be broken in the staged output directory.
// Findings are advisory; they never fail a build.
package linkcheck

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// LinkKind distinguishes how a link was written.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindAuto   LinkKind = "auto"
	LinkKindImage  LinkKind = "image"
	LinkKindHTML   LinkKind = "html"
)

// Link is an extracted link destination.
type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks parses Markdown and returns every link-like construct,
// including those inside raw HTML blocks and inline HTML spans.
func ExtractLinks(body []byte) []Link {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		case *gmast.HTMLBlock:
			links = append(links, htmlLinks(blockText(node, body))...)
		case *gmast.RawHTML:
			links = append(links, htmlLinks(rawHTMLText(node, body))...)
		}
		return gmast.WalkContinue, nil
	})
	return links
}

func blockText(n *gmast.HTMLBlock, body []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		sb.Write(seg.Value(body))
	}
	return sb.String()
}

func rawHTMLText(n *gmast.RawHTML, body []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		sb.Write(seg.Value(body))
	}
	return sb.String()
}

// htmlLinks tokenizes an HTML fragment and pulls href/src attributes.
func htmlLinks(fragment string) []Link {
	var links []Link
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			attr := ""
			switch n.Data {
			case "a", "link":
				attr = "href"
			case "img", "script", "source":
				attr = "src"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						links = append(links, Link{Kind: LinkKindHTML, Destination: a.Val})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// IsExternal reports whether a destination points outside the staged tree.
func IsExternal(dest string) bool {
	lower := strings.ToLower(dest)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(dest, "#")
}

// CheckFile extracts links from the Markdown file at path and returns the
// relative destinations that do not resolve to files under baseDir.
func CheckFile(path, baseDir string) ([]string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var broken []string
	seen := make(map[string]bool)
	for _, l := range ExtractLinks(body) {
		dest := l.Destination
		if dest == "" || IsExternal(dest) || seen[dest] {
			continue
		}
		seen[dest] = true

		// Strip fragments and query strings before probing the filesystem.
		clean := dest
		if i := strings.IndexAny(clean, "#?"); i != -1 {
			clean = clean[:i]
		}
		if clean == "" {
			continue
		}

		if _, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(clean))); err != nil {
			broken = append(broken, dest)
		}
	}
	return broken, nil
}
