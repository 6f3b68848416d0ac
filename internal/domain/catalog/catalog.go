// Package catalog provides the table-of-contents domain entity for demo sources.
package catalog

import "strings"

// DirectoryDescription is the description given to nested demo directories.
const DirectoryDescription = "[directory]"

// Entry represents one available demo.
type Entry struct {
	Name        string // Identifier that can be passed back to run the demo
	Description string // Human readable summary (may be empty)
}

// TableOfContents represents the demos a source makes available.
type TableOfContents struct {
	Name    string  // Source name (module or remote path)
	Entries []Entry // Available demos in display order
}

// IsEmpty reports whether the table of contents lists no demos.
func (t *TableOfContents) IsEmpty() bool {
	return len(t.Entries) == 0
}

// Names returns all entry names.
func (t *TableOfContents) Names() []string {
	names := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		names[i] = e.Name
	}
	return names
}

// IsDirectory reports whether the entry points at a nested listing.
func (e Entry) IsDirectory() bool {
	return e.Description == DirectoryDescription || strings.HasSuffix(e.Name, "/")
}
