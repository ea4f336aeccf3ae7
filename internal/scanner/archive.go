package scanner

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// archiveExtensions are the artifact extensions read as zip archives
var archiveExtensions = map[string]bool{
	"jar": true,
	"war": true,
	"ear": true,
	"rar": true,
	"sar": true,
	"zip": true,
}

// listing is the content summary of an archive
type listing struct {
	Classes  []string
	Packages []string
	Files    []string
}

// listArchive reads the entries of a zip archive. Classes are top-level
// class names, packages the distinct packages holding them.
func listArchive(r io.ReaderAt, size int64) (*listing, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	var l listing
	packages := make(map[string]bool)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		l.Files = append(l.Files, f.Name)

		if !strings.HasSuffix(f.Name, ".class") || strings.Contains(f.Name, "$") {
			continue
		}
		class := strings.TrimSuffix(f.Name, ".class")
		l.Classes = append(l.Classes, strings.ReplaceAll(class, "/", "."))
		if dir := path.Dir(class); dir != "." {
			packages[strings.ReplaceAll(dir, "/", ".")] = true
		}
	}

	for p := range packages {
		l.Packages = append(l.Packages, p)
	}
	sort.Strings(l.Classes)
	sort.Strings(l.Packages)
	sort.Strings(l.Files)
	return &l, nil
}
