package pdf

import (
	"fmt"

	apperrors "pdf-extract-service/pkg/errors"
)

// Page is one flattened leaf of the document's page tree. Number is
// 1-indexed; Resources carries the inherited resource dictionary used
// for font lookups during decoding.
type Page struct {
	Number    int
	Dict      Dict
	Resources Dict
}

// buildPages flattens the page tree into document order. The walk runs
// once per handle; later lookups reuse the flattened slice.
func (d *Document) buildPages() {
	root, ok := toDict(d.Resolve(d.trailer["Root"]))
	if !ok {
		d.pagesErr = apperrors.NewParseFailed("document catalog is not a dictionary", nil)
		return
	}
	top := d.Resolve(root["Pages"])
	topDict, ok := toDict(top)
	if !ok {
		d.pagesErr = apperrors.NewParseFailed("catalog has no page tree", nil)
		return
	}

	visited := make(map[Ref]bool)
	if ref, isRef := root["Pages"].(Ref); isRef {
		visited[ref] = true
	}
	if err := d.walkPageTree(topDict, nil, visited); err != nil {
		d.pages = nil
		d.pagesErr = apperrors.NewParseFailed("walking page tree", err)
	}
}

func (d *Document) walkPageTree(node Dict, inherited Dict, visited map[Ref]bool) error {
	typ, _ := toName(d.Resolve(node["Type"]))

	// Inheritable attributes: a node's /Resources applies to all
	// descendants that do not declare their own.
	resources := inherited
	if res, ok := toDict(d.Resolve(node["Resources"])); ok {
		resources = res
	}

	switch typ {
	case "Pages":
		kids, ok := toArray(d.Resolve(node["Kids"]))
		if !ok {
			return fmt.Errorf("page-group node has no /Kids array")
		}
		for _, kid := range kids {
			if ref, isRef := kid.(Ref); isRef {
				if visited[ref] {
					return fmt.Errorf("page tree contains a cycle at object %d", ref.Num)
				}
				visited[ref] = true
			}
			kidDict, ok := toDict(d.Resolve(kid))
			if !ok {
				return fmt.Errorf("page tree kid is not a dictionary")
			}
			if err := d.walkPageTree(kidDict, resources, visited); err != nil {
				return err
			}
		}
		return nil
	case "Page":
		d.pages = append(d.pages, Page{
			Number:    len(d.pages) + 1,
			Dict:      node,
			Resources: resources,
		})
		return nil
	default:
		return fmt.Errorf("page tree node has type /%s", typ)
	}
}

// PageCount returns the number of pages in document order.
func (d *Document) PageCount() (int, error) {
	d.pagesOnce.Do(d.buildPages)
	if d.pagesErr != nil {
		return 0, d.pagesErr
	}
	return len(d.pages), nil
}

// ResolvePage returns the page with the given 1-indexed number.
func (d *Document) ResolvePage(num int) (*Page, error) {
	d.pagesOnce.Do(d.buildPages)
	if d.pagesErr != nil {
		return nil, d.pagesErr
	}
	if num < 1 || num > len(d.pages) {
		return nil, apperrors.NewPageNotFound(num, len(d.pages))
	}
	return &d.pages[num-1], nil
}

// contentData concatenates the page's decoded content stream(s). A page
// may split its content across an array of streams; they form a single
// logical stream.
func (d *Document) contentData(p *Page) ([]byte, error) {
	contents := d.Resolve(p.Dict["Contents"])

	var streams []Stream
	switch c := contents.(type) {
	case Stream:
		streams = []Stream{c}
	case Array:
		for _, ref := range c {
			if s, ok := d.Resolve(ref).(Stream); ok {
				streams = append(streams, s)
			}
		}
	case nil, Null:
		return nil, nil // blank page
	default:
		return nil, fmt.Errorf("page %d contents are %T", p.Number, contents)
	}

	var out []byte
	for _, s := range streams {
		data, err := d.StreamData(s)
		if err != nil {
			return nil, fmt.Errorf("page %d content stream: %w", p.Number, err)
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, data...)
	}
	return out, nil
}
