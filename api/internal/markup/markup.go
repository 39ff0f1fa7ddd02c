// Package markup parses externally rendered task HTML into a queryable tree.
// Parsing is lenient: anything an HTML5 browser would accept parses here.
package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the query surface the answer rules work against.
type Node interface {
	// Text is the concatenated text of the node and its descendants.
	Text() string
	Attr(name string) (string, bool)
	// Find returns descendants matching a CSS selector in document order.
	// An invalid selector matches nothing.
	Find(selector string) []Node
}

// Document is a parsed task.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw markup.
func Parse(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) Text() string { return d.doc.Text() }

func (d *Document) Attr(string) (string, bool) { return "", false }

func (d *Document) Find(selector string) []Node { return wrap(d.doc.Find(selector)) }

type element struct {
	sel *goquery.Selection
}

func (e element) Text() string                    { return e.sel.Text() }
func (e element) Attr(name string) (string, bool) { return e.sel.Attr(name) }
func (e element) Find(selector string) []Node     { return wrap(e.sel.Find(selector)) }

func wrap(sel *goquery.Selection) []Node {
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, element{sel: s})
	})
	return nodes
}
