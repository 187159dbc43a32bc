package pipeline

import (
	"dtc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the run result. It goes into debug report
// next to produced files.
func (r *Result) String() string {
	if r == nil {
		return "<nil Result>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Result")
	tw.Line(1, "Viewports min=%d mid=%d max=%d", r.Viewports.Min, r.Viewports.Mid, r.Viewports.Max)
	tw.theme(1, r)
	tw.stylesheet(1, r)
	if len(r.Warnings) > 0 {
		tw.Line(1, "Warnings: %d", len(r.Warnings))
		for _, w := range r.Warnings {
			tw.Line(2, "%s", w)
		}
	}
	return tw.String()
}

func (tw treeWriter) theme(depth int, r *Result) {
	if r.Theme == nil {
		return
	}
	cats := r.Theme.Categories()
	tw.Line(depth, "Theme categories=%d", len(cats))
	for _, cat := range cats {
		g, err := r.Theme.Lookup(cat)
		if err != nil {
			continue
		}
		tw.Line(depth+1, "%s keys=%d", cat, g.Len())
		for k, v := range g.All() {
			tw.Pair(depth+2, k, v)
		}
	}
}

func (tw treeWriter) stylesheet(depth int, r *Result) {
	if r.Stylesheet == nil {
		return
	}
	rules := r.Stylesheet.Rules()
	tw.Line(depth, "Stylesheet rules=%d declarations=%d", len(rules), r.Stylesheet.DeclarationCount())
	for _, rule := range rules {
		tw.Line(depth+1, "%s declarations=%d", rule.Selector, len(rule.Declarations))
	}
}
