package view

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/filebox/filebox-client/internal/constants"
)

// BuildListNode builds the list container with one <li> per item:
//
//	<ul id="fileList"><li>a.txt<a href="/download/a.txt"> Download</a><button data-file="a.txt"> Delete</button></li></ul>
//
// Names are added as text nodes, so they are never interpreted as markup.
func BuildListNode(items []ItemNode) *html.Node {
	ul := element(atom.Ul, html.Attribute{Key: "id", Val: constants.FileListElementID})

	for _, item := range items {
		li := element(atom.Li)
		li.AppendChild(text(item.Name))

		a := element(atom.A, html.Attribute{Key: "href", Val: item.Download.Href})
		a.AppendChild(text(item.Download.Text))
		li.AppendChild(a)

		button := element(atom.Button,
			html.Attribute{Key: "type", Val: "button"},
			html.Attribute{Key: "data-file", Val: item.Delete.FileName},
		)
		button.AppendChild(text(item.Delete.Label))
		li.AppendChild(button)

		ul.AppendChild(li)
	}
	return ul
}

// WriteHTML renders the list container to w.
func WriteHTML(w io.Writer, items []ItemNode) error {
	if err := html.Render(w, BuildListNode(items)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// HTML returns the rendered list container as a string.
func HTML(items []ItemNode) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, items); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
