package gradedir

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core"
)

// ArchiveSubmission drops the raw message into the record's maildir, under
// mail/new/ so any maildir-aware reader treats it as unread.
func (s *Store) ArchiveSubmission(student, assignment string, msg []byte) (string, error) {
	dir := filepath.Join(s.recordDir(student, assignment), mailDir)
	for _, sub := range []string{"tmp", "new", "cur"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", core.NewStoreError(dir, "creating maildir: %v", err)
		}
	}
	path := filepath.Join(dir, "new", uuid.New().String())
	if err := os.WriteFile(path, msg, 0o644); err != nil {
		return "", core.NewStoreError(path, "archiving submission: %v", err)
	}
	return path, nil
}

// SubmissionTime reports the newest archived submission for the record, or
// the zero time when nothing has been submitted.
func (s *Store) SubmissionTime(student, assignment string) (time.Time, error) {
	dir := filepath.Join(s.recordDir(student, assignment), mailDir, "new")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, core.NewStoreError(dir, "listing submissions: %v", err)
	}
	var latest time.Time
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, nil
}
