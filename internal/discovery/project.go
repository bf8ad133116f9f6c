package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project is one project subdirectory of the log-store root.
type Project struct {
	// ID is the directory's encoded basename.
	ID string
	// Path is the decoded absolute project path.
	Path string
	// Dir is the absolute path to the project's directory within the root.
	Dir string
}

// EncodeProjectID encodes an absolute project path into the log-store's
// directory-naming scheme: literal hyphens are doubled, then path
// separators become single hyphens. Doubling must happen first so a
// decoder can tell a literal hyphen (`--`) apart from a separator (`-`).
func EncodeProjectID(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '-':
			b.WriteString("--")
		case '/':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DecodeProjectID inverts EncodeProjectID: a run of two hyphens decodes
// to one literal hyphen, a lone hyphen decodes to a path separator.
func DecodeProjectID(encoded string) string {
	var b strings.Builder
	i := 0
	for i < len(encoded) {
		if encoded[i] == '-' {
			if i+1 < len(encoded) && encoded[i+1] == '-' {
				b.WriteByte('-')
				i += 2
				continue
			}
			b.WriteByte('/')
			i++
			continue
		}
		b.WriteByte(encoded[i])
		i++
	}
	return b.String()
}

// ListProjects enumerates the project subdirectories under root.
func ListProjects(root string) ([]Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, wrapReadDirErr(root, err)
	}

	projects := make([]Project, 0, len(entries))
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		id := ent.Name()
		projects = append(projects, Project{
			ID:   id,
			Path: DecodeProjectID(id),
			Dir:  filepath.Join(root, id),
		})
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	return projects, nil
}

func wrapReadDirErr(path string, err error) error {
	if os.IsNotExist(err) {
		return notFound(path, err)
	}
	if os.IsPermission(err) {
		return permissionDenied(path, err)
	}
	return unreadableRoot(path, err)
}
