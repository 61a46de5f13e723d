// Package view turns a file listing into the nodes shown by the page.
//
// Render is pure: it never touches the page. The host owns the list element
// and commits whatever Render returns (see state.Page).
package view

import (
	"net/url"

	"github.com/filebox/filebox-client/internal/constants"
	"github.com/filebox/filebox-client/internal/models"
)

// Link is an anchor with a relative href.
type Link struct {
	Href string `json:"href" yaml:"href"`
	Text string `json:"text" yaml:"text"`
}

// DeleteAction is the delete control of one entry. It carries its own copy
// of the file name taken at render time.
type DeleteAction struct {
	FileName string `json:"file_name" yaml:"file_name"`
	Label    string `json:"label" yaml:"label"`
}

// ItemNode is one rendered list entry.
type ItemNode struct {
	Name     string       `json:"name" yaml:"name"`
	Download Link         `json:"download" yaml:"download"`
	Delete   DeleteAction `json:"delete" yaml:"delete"`
}

// Render builds one ItemNode per entry, in listing order.
// An empty listing renders to an empty, non-nil slice.
func Render(listing models.FileListing) []ItemNode {
	items := make([]ItemNode, 0, len(listing))
	for _, entry := range listing {
		items = append(items, renderItem(entry.Name))
	}
	return items
}

func renderItem(name string) ItemNode {
	return ItemNode{
		Name: name,
		Download: Link{
			Href: DownloadHref(name),
			Text: constants.DownloadLinkText,
		},
		Delete: DeleteAction{
			FileName: name,
			Label:    constants.DeleteButtonText,
		},
	}
}

// DownloadHref returns the relative download path for a file name.
func DownloadHref(name string) string {
	return constants.DownloadPathPrefix + url.PathEscape(name)
}
