package tree

import (
	"fmt"
	"time"

	"github.com/mattsolo1/grove-notetree/pkg/models"
)

// Node is one entry of the notes tree. The set of implementations is closed:
// FilesRoot, TagsRoot, Entry and Tag.
type Node interface {
	Kind() Kind
	sealed()
}

// Kind names a node variant. It doubles as the item's context value.
type Kind string

const (
	KindFilesRoot Kind = "rootFile"
	KindTagsRoot  Kind = "rootTag"
	KindEntry     Kind = "file"
	KindTag       Kind = "tag"
)

// FilesRoot is the top-level "Files" node listing the notes folder.
type FilesRoot struct{}

// TagsRoot is the top-level "Tags" node; expanding it builds the tag index.
type TagsRoot struct{}

// Entry is a directory or file inside the notes folder.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	ModTime time.Time
}

// Tag carries the files declaring it, computed when the tag root was expanded.
type Tag struct {
	Name  string
	Files []*Entry
}

func (FilesRoot) Kind() Kind { return KindFilesRoot }
func (TagsRoot) Kind() Kind  { return KindTagsRoot }
func (*Entry) Kind() Kind    { return KindEntry }
func (*Tag) Kind() Kind      { return KindTag }

func (FilesRoot) sealed() {}
func (TagsRoot) sealed()  {}
func (*Entry) sealed()    {}
func (*Tag) sealed()      {}

// NewEntry converts a walked file into an entry node.
func NewEntry(f models.NoteFile) *Entry {
	return &Entry{Name: f.Name, Path: f.Path, IsDir: f.IsDir, ModTime: f.ModTime}
}

// CollapsibleState is the expand affordance shown next to a node.
type CollapsibleState int

const (
	None CollapsibleState = iota
	Collapsed
	Expanded
)

// Icon names the glyph a host draws for a node.
type Icon string

const (
	IconTag       Icon = "tag"
	IconDirectory Icon = "file-directory"
	IconFile      Icon = "file"
)

// CommandOpen is the only command attached to items: open a file.
const CommandOpen = "open"

// Command is an action a host runs when the item is activated.
type Command struct {
	Name string
	Path string
}

// Item is the display representation of a node.
type Item struct {
	Label        string
	State        CollapsibleState
	Icon         Icon
	ContextValue string
	Command      *Command
}

// ItemFor maps a node to its display representation.
func ItemFor(n Node) Item {
	switch n := n.(type) {
	case FilesRoot:
		return Item{Label: "Files", State: Expanded, Icon: IconDirectory, ContextValue: string(KindFilesRoot)}
	case TagsRoot:
		return Item{Label: "Tags", State: Expanded, Icon: IconTag, ContextValue: string(KindTagsRoot)}
	case *Tag:
		return Item{Label: n.Name, State: Collapsed, Icon: IconTag, ContextValue: string(KindTag)}
	case *Entry:
		if n.IsDir {
			return Item{Label: n.Name, State: Collapsed, Icon: IconDirectory, ContextValue: string(KindEntry)}
		}
		return Item{
			Label:        n.Name,
			State:        None,
			Icon:         IconFile,
			ContextValue: string(KindEntry),
			Command:      &Command{Name: CommandOpen, Path: n.Path},
		}
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}
