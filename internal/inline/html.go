package inline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel image downloads for one document.
const maxConcurrentFetches = 4

// InlineHTML rewrites every <img src> in a fragment or full document to a
// data URI. Images that cannot be inlined because they are local are
// removed; other failures keep the original reference and are logged.
func (i *Inliner) InlineHTML(ctx context.Context, htmlContent string) (string, error) {
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	imgs := collectImages(doc)
	if len(imgs) == 0 {
		return htmlContent, nil
	}

	// Each distinct source is fetched once.
	var (
		mu       sync.Mutex
		resolved = make(map[string]string)
		local    = make(map[string]bool)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, src := range distinctSources(imgs) {
		g.Go(func() error {
			uri, err := i.Inline(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrLocalImage):
				i.log.Warn("dropping local image", zap.String("src", src))
				local[src] = true
			case err != nil:
				return err
			default:
				resolved[src] = uri
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	for _, n := range imgs {
		src := attr(n, "src")
		if local[src] {
			n.Parent.RemoveChild(n)
			continue
		}
		if uri, ok := resolved[src]; ok {
			setAttr(n, "src", uri)
		}
	}

	return renderHTML(doc, isFragment)
}

func collectImages(n *html.Node) []*html.Node {
	var imgs []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img && attr(n, "src") != "" {
			imgs = append(imgs, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return imgs
}

func distinctSources(imgs []*html.Node) []string {
	seen := make(map[string]bool, len(imgs))
	var out []string
	for _, n := range imgs {
		src := attr(n, "src")
		if !seen[src] && !hasScheme(src, "data:") {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// parseHTML parses a full document (leading doctype or <html>) or a body
// fragment. Fragments are wrapped in a document node for traversal.
func parseHTML(content string) (*html.Node, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc; fragments render their children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
