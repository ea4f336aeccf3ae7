package scanner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/internal/repository"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// spooledFile is a repository file copied to a temporary file while its
// checksums are computed, so archives are listed from disk instead of memory
type spooledFile struct {
	file *os.File
	size int64
	sha1 string
	md5  string
}

func spool(ctx context.Context, content repository.ManagedRepositoryContent, p string) (*spooledFile, error) {
	rc, err := content.Retrieve(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	file, err := os.CreateTemp("", "archiva-scan-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	s := &spooledFile{file: file}

	s.sha1, s.md5, err = utils.Checksums(io.TeeReader(rc, file))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	if s.size, err = file.Seek(0, io.SeekCurrent); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to size %s: %w", p, err)
	}
	return s, nil
}

// Reader returns a reader over the whole spooled content
func (s *spooledFile) Reader() io.Reader {
	return io.NewSectionReader(s.file, 0, s.size)
}

// Close closes and removes the temporary file
func (s *spooledFile) Close() {
	name := s.file.Name()
	s.file.Close()
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", name).Msg("failed to remove temporary file")
	}
}
