package utils

import (
	"mime"
	"path"
	"strings"
)

// DefaultMimeType is served for files with an unknown extension
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	"aar":    "application/java-archive",
	"asc":    "text/plain",
	"bz2":    "application/x-bzip2",
	"class":  DefaultMimeType,
	"ear":    "application/java-archive",
	"gif":    "image/gif",
	"gz":     "application/gzip",
	"htm":    "text/html",
	"html":   "text/html",
	"jar":    "application/java-archive",
	"jpg":    "image/jpeg",
	"json":   "application/json",
	"md5":    "text/plain",
	"pdf":    "application/pdf",
	"png":    "image/png",
	"pom":    "application/xml",
	"ppt":    "application/vnd.ms-powerpoint",
	"sha1":   "text/plain",
	"sha256": "text/plain",
	"sha512": "text/plain",
	"tar":    "application/x-tar",
	"tgz":    "application/gzip",
	"txt":    "text/plain",
	"war":    "application/java-archive",
	"xml":    "application/xml",
	"zip":    "application/zip",
}

// MimeType returns the content type served for a file name. Repository
// file types come from the table above, anything else from the system
// registry.
func MimeType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return DefaultMimeType
	}
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return DefaultMimeType
}
