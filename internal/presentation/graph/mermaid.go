package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/expr"
)

// Overlay controls the dynamic data drawn on top of the tree.
type Overlay struct {
	// Values labels every operator node with the value of its subtree.
	// The operator where evaluation failed is labeled with the error and
	// styled as failed.
	Values bool
}

// GenerateMermaid produces a Mermaid flowchart of an expression tree.
// It applies semantic styling:
// - Number: ((Circle))
// - Sign: [/Parallelogram/]
// - Operator: [Rectangle]
func GenerateMermaid(root expr.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	g := &generator{sb: &sb, overlay: overlay}
	g.visit(root)

	if overlay != nil && len(g.failed) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme (Light/Dark)
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:3px,color:#000;\n")
		for _, id := range g.failed {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", id))
		}
	}

	return sb.String()
}

type generator struct {
	sb      *strings.Builder
	overlay *Overlay
	next    int
	failed  []string
}

// visit writes n and its subtree and returns the Mermaid ID of n.
func (g *generator) visit(n expr.Node) string {
	id := fmt.Sprintf("n%d", g.next)
	g.next++

	var label, opener, closer string
	var children []expr.Node
	switch n := n.(type) {
	case *expr.Number:
		label, opener, closer = n.String(), "((", "))"
	case *expr.Unary:
		label, opener, closer = "+", "[/", "/]"
		if n.Negative {
			label = "-"
		}
		children = []expr.Node{n.X}
	case *expr.Binary:
		label, opener, closer = n.Op.Symbol(), "[", "]"
		children = []expr.Node{n.X, n.Y}
	}

	if g.overlay != nil && g.overlay.Values && len(children) > 0 {
		label += g.annotate(id, n)
	}

	g.sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, escapeLabel(label), closer))
	for _, child := range children {
		childID := g.visit(child)
		g.sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, childID))
	}
	return id
}

func (g *generator) annotate(id string, n expr.Node) string {
	v, err := expr.Eval(n)
	if err == nil {
		return " <br/> = " + arith.Format(v)
	}
	// Only the operator that raised the error is marked; its ancestors fail with it.
	var evalErr *expr.EvalError
	if errors.As(err, &evalErr) && evalErr.Pos == n.Position() {
		g.failed = append(g.failed, id)
		return " <br/> ✗ " + evalErr.Err.Error()
	}
	return ""
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
