package digest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lysyi3m/feed-digest/app/feed"
)

type NodeKind int

const (
	KindSummary NodeKind = iota
	KindCategory
	KindPost
)

func (k NodeKind) String() string {
	switch k {
	case KindSummary:
		return "summary"
	case KindCategory:
		return "category"
	case KindPost:
		return "post"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is a display tree item. The set of implementations is closed to this
// package.
type Node interface {
	Kind() NodeKind
	node()
}

type SummaryNode struct {
	Text string
}

type CategoryNode struct {
	Name     string
	Children []PostNode
}

type PostNode struct {
	Post feed.Post
}

func (SummaryNode) Kind() NodeKind  { return KindSummary }
func (CategoryNode) Kind() NodeKind { return KindCategory }
func (PostNode) Kind() NodeKind     { return KindPost }

func (SummaryNode) node()  {}
func (CategoryNode) node() {}
func (PostNode) node()     {}

// BuildTree lays out a result as a summary line followed by one node per
// non-empty category in configured order.
func BuildTree(result Result) []Node {
	nodes := []Node{SummaryNode{Text: summaryText(result)}}

	for _, name := range result.Order {
		category := CategoryNode{Name: name}
		for _, post := range result.Groups[name] {
			category.Children = append(category.Children, PostNode{Post: post})
		}
		nodes = append(nodes, category)
	}

	return nodes
}

func RenderTree(w io.Writer, nodes []Node) error {
	var b strings.Builder
	for _, n := range nodes {
		renderNode(&b, n, 0)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n := n.(type) {
	case SummaryNode:
		fmt.Fprintf(b, "%s%s\n", indent, n.Text)
	case CategoryNode:
		fmt.Fprintf(b, "%s%s (%d)\n", indent, n.Name, len(n.Children))
		for _, child := range n.Children {
			renderNode(b, child, depth+1)
		}
	case PostNode:
		fmt.Fprintf(b, "%s- %s [%s] %s\n", indent, n.Post.Title, n.Post.Author, n.Post.Link)
	default:
		panic(fmt.Sprintf("unhandled node kind %v", n.Kind()))
	}
}

func summaryText(result Result) string {
	if len(result.Posts) == 0 {
		return fmt.Sprintf("No posts from %s since %s", result.Source, result.Baseline.Cutoff.Format(time.RFC3339))
	}
	return fmt.Sprintf("%d posts in %d categories from %s since %s",
		len(result.Posts), len(result.Order), result.Source, result.Baseline.Cutoff.Format(time.RFC3339))
}
