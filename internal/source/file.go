package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/syou6162/diffchunk/internal/engine"
	"github.com/syou6162/diffchunk/internal/model"
	"github.com/syou6162/diffchunk/internal/patch"
)

const abbrevLen = 7

// Side is one side of a file diff before decoding
type Side struct {
	Path    string
	Content []byte
	// Mode is a git file mode such as "100644"
	Mode string
	// Hash is the git blob name of Content
	Hash   plumbing.Hash
	Exists bool
}

// NewSide describes existing content
func NewSide(path string, content []byte, mode filemode.FileMode) Side {
	return Side{
		Path:    path,
		Content: content,
		Mode:    formatMode(mode),
		Hash:    plumbing.ComputeHash(plumbing.BlobObject, content),
		Exists:  true,
	}
}

// Missing describes the absent side of a new or deleted file
func Missing(path string) Side {
	return Side{Path: path}
}

func formatMode(m filemode.FileMode) string {
	return fmt.Sprintf("%o", uint32(m))
}

func (s Side) revision() string {
	if !s.Exists {
		return strings.Repeat("0", abbrevLen)
	}
	return s.Hash.String()[:abbrevLen]
}

// NewInput builds the engine input for two sides. Content that does not
// decode makes the whole file binary.
func NewInput(left, right Side) engine.FileInput {
	in := engine.FileInput{
		LeftEndpoint:  model.FileEndpoint{Path: left.Path, Revision: left.revision()},
		RightEndpoint: model.FileEndpoint{Path: right.Path, Revision: right.revision()},
		OldMode:       left.Mode,
		NewMode:       right.Mode,
	}
	switch {
	case !left.Exists:
		in.Operation = model.NewFile
		in.LeftEndpoint.Path = right.Path
	case !right.Exists:
		in.Operation = model.DeleteFile
		in.RightEndpoint.Path = left.Path
	}

	l, lerr := Decode(left.Content)
	r, rerr := Decode(right.Content)
	if lerr != nil || rerr != nil {
		in.IsBinary = true
		return in
	}
	in.Left, in.Right = l, r
	return in
}

// ReadFile reads one side from disk. Symbolic links are read as their
// target, the way git stores them.
func ReadFile(path string) (Side, error) {
	if path == patch.DevNull {
		return Missing(""), nil
	}
	info, err := os.Lstat(path)
	if err != nil {
		return Side{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		return Side{}, fmt.Errorf("failed to read mode of %s: %w", path, err)
	}

	var content []byte
	switch {
	case mode == filemode.Symlink:
		target, err := os.Readlink(path)
		if err != nil {
			return Side{}, fmt.Errorf("failed to read link %s: %w", path, err)
		}
		content = []byte(target)
	case mode.IsFile():
		content, err = os.ReadFile(path)
		if err != nil {
			return Side{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	default:
		return Side{}, fmt.Errorf("%s is not a file", path)
	}
	return NewSide(path, content, mode), nil
}

// ReadFiles reads two files into an engine input. /dev/null stands for a
// missing side.
func ReadFiles(leftPath, rightPath string) (engine.FileInput, error) {
	if leftPath == patch.DevNull && rightPath == patch.DevNull {
		return engine.FileInput{}, fmt.Errorf("both sides are %s", patch.DevNull)
	}
	left, err := ReadFile(leftPath)
	if err != nil {
		return engine.FileInput{}, err
	}
	right, err := ReadFile(rightPath)
	if err != nil {
		return engine.FileInput{}, err
	}
	return NewInput(left, right), nil
}
