package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// AllowedExtensions lists the accepted filename suffixes, without the dot.
var AllowedExtensions = []string{"pdf", "docx", "txt"}

// DefaultMaxBytes matches the upload limit enforced by the analysis service.
const DefaultMaxBytes int64 = 20 << 20

// UnsupportedTypeMessage is shown when a file fails the extension allow-list.
const UnsupportedTypeMessage = "Please upload a PDF, DOCX, or TXT."

// ErrNoFile is returned when an input event carried no file at all.
// Callers ignore it: an empty drop is not a user error.
var ErrNoFile = errors.New("no file provided")

// Candidate is a user-selected file that passed validation and awaits upload.
// The content is streamed from disk at send time and never held in memory.
type Candidate struct {
	Path string
	Name string
	Size int64
}

// Open returns a reader over the candidate's content.
func (c Candidate) Open() (io.ReadCloser, error) {
	return os.Open(c.Path)
}

// ValidationError reports a file rejected before any request is made.
// Error returns the user-facing message.
type ValidationError struct {
	Name    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks name against the extension allow-list, case-insensitively.
func Validate(name string) error {
	lower := strings.ToLower(name)
	for _, ext := range AllowedExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return nil
		}
	}
	return &ValidationError{Name: name, Message: UnsupportedTypeMessage}
}

// Acquirer turns raw input events into a single validated Candidate.
type Acquirer struct {
	maxBytes int64
}

// NewAcquirer creates an Acquirer. A non-positive maxBytes disables the
// size check.
func NewAcquirer(maxBytes int64) *Acquirer {
	return &Acquirer{maxBytes: maxBytes}
}

// FromDrop accepts the text a terminal pastes when files are dropped onto it.
// Only the first dropped path is considered.
func (a *Acquirer) FromDrop(content string) (Candidate, error) {
	paths := SplitDropped(content)
	if len(paths) == 0 {
		return Candidate{}, ErrNoFile
	}
	return a.accept(paths[0])
}

// FromPick accepts a path chosen in the file picker.
func (a *Acquirer) FromPick(path string) (Candidate, error) {
	if strings.TrimSpace(path) == "" {
		return Candidate{}, ErrNoFile
	}
	return a.accept(path)
}

// FromTyped accepts a path typed by hand. Unlike a drop the text is taken
// as one path, so spaces need no escaping; surrounding quotes are removed.
func (a *Acquirer) FromTyped(text string) (Candidate, error) {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		text = text[1 : len(text)-1]
	}
	path := normalizePath(text)
	if path == "" {
		return Candidate{}, ErrNoFile
	}
	return a.accept(path)
}

func (a *Acquirer) accept(path string) (Candidate, error) {
	name := filepath.Base(path)
	if err := Validate(name); err != nil {
		return Candidate{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, &ValidationError{
			Name:    name,
			Message: fmt.Sprintf("Cannot read %s.", name),
			Err:     err,
		}
	}
	if !info.Mode().IsRegular() {
		return Candidate{}, &ValidationError{
			Name:    name,
			Message: fmt.Sprintf("%s is not a regular file.", name),
		}
	}
	if a.maxBytes > 0 && info.Size() > a.maxBytes {
		return Candidate{}, &ValidationError{
			Name: name,
			Message: fmt.Sprintf("File too large (%s, limit %s).",
				humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(a.maxBytes))),
		}
	}

	return Candidate{Path: path, Name: name, Size: info.Size()}, nil
}
