package arxml

import (
	"github.com/goccy/go-yaml"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// dumpNode is the serializable shape of one element, used only for
// inspection and structural comparison. It is rebuilt from the live tree on
// every call.
type dumpNode struct {
	Name       string            `yaml:"name"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Text       string            `yaml:"text,omitempty"`
	Children   []dumpNode        `yaml:"children,omitempty"`
}

func makeDumpNode(e *Element) dumpNode {
	n := dumpNode{Name: e.name, Text: e.cdata}
	if len(e.attrs) > 0 {
		n.Attributes = make(map[string]string, len(e.attrs))
		for _, a := range e.attrs {
			if a.Name == "UUID" {
				// UUIDs are freshly generated per element; including
				// them would make structurally equal trees compare
				// unequal.
				continue
			}
			n.Attributes[a.Name] = a.Value
		}
	}
	for _, c := range e.children {
		n.Children = append(n.Children, makeDumpNode(c))
	}
	return n
}

// DumpYAML renders the subtree rooted at e as YAML. Two subtrees with the
// same structure, names, attributes and character data produce identical
// output.
func DumpYAML(e *Element) (string, error) {
	d, err := yaml.Marshal(makeDumpNode(e))
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// Diff returns a compact text diff between two tree dumps, or "" if they
// are equal.
func Diff(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
