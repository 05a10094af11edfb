package patch

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/syou6162/diffchunk/internal/model"
)

var (
	// format-patch ends with "-- ", the git version and a blank line
	signatureRe      = regexp.MustCompile(`\n-- \n\S*\n\n$`)
	shortSignatureRe = regexp.MustCompile(`\n-- \n\d+(?:\.\d+)+\S*\n$`)

	hunkHeaderRe      = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(?: (.*))?$`)
	indexRe           = regexp.MustCompile(`^index (\w+)\.\.(\w+)(?: (\d+))?$`)
	newFileModeRe     = regexp.MustCompile(`^new file mode (\d+)$`)
	deletedFileModeRe = regexp.MustCompile(`^deleted file mode (\d+)$`)
	oldModeRe         = regexp.MustCompile(`^old mode (\d+)$`)
	newModeRe         = regexp.MustCompile(`^new mode (\d+)$`)
	similarityRe      = regexp.MustCompile(`^(?:dis)?similarity index (\d{1,3})%$`)
	copyRenameFromRe  = regexp.MustCompile(`^(copy|rename) from (.+)$`)
	copyRenameToRe    = regexp.MustCompile(`^(copy|rename) to (.+)$`)
	plainBinaryRe     = regexp.MustCompile(`^Binary files ([^\t]+) and ([^\t]+) differ$`)
)

const (
	gitHeaderPrefix = "diff --git "
	gitBinaryPatch  = "GIT binary patch"
)

// ReadPatch parses unified or git patch text into file diffs. A trailing
// format-patch signature is ignored. Any malformed file section fails the
// whole parse.
func ReadPatch(text string) ([]model.FileDiff, error) {
	for _, re := range []*regexp.Regexp{signatureRe, shortSignatureRe} {
		if loc := re.FindStringIndex(text); loc != nil {
			text = text[:loc[0]+1]
			break
		}
	}
	p := &parser{lines: strings.Split(text, "\n")}

	files, ok, err := p.readGitPatch()
	if err != nil {
		return nil, err
	}
	if ok {
		return files, nil
	}

	files, ok, err = p.readPlainPatch()
	if err != nil {
		return nil, err
	}
	if ok {
		return files, nil
	}
	return nil, NewMalformedPatchError("no git or unified file headers found")
}

type parser struct {
	lines []string
}

func (p *parser) line(i int) string {
	if i < 0 || i >= len(p.lines) {
		return ""
	}
	return p.lines[i]
}

func (p *parser) match(re *regexp.Regexp, i int) []string {
	if i >= len(p.lines) {
		return nil
	}
	return re.FindStringSubmatch(p.lines[i])
}

// blank reports whether lines [from, to) are all empty
func (p *parser) blank(from, to int) bool {
	for i := from; i < to; i++ {
		if p.lines[i] != "" {
			return false
		}
	}
	return true
}

type gitHeader struct {
	line   int
	next   int
	simple bool
	fd     model.FileDiff
}

func (p *parser) readGitPatch() ([]model.FileDiff, bool, error) {
	var headers []gitHeader
	for i := 0; i < len(p.lines); i++ {
		if !strings.HasPrefix(p.lines[i], gitHeaderPrefix) {
			continue
		}
		if h, ok := p.matchSimpleGitHeader(i); ok {
			headers = append(headers, h)
		} else if h, ok := p.matchCopyRenameHeader(i); ok {
			headers = append(headers, h)
			i = h.next - 1
		} else if h, ok := p.matchChangedPathsHeader(i); ok {
			headers = append(headers, h)
		}
	}
	if len(headers) == 0 {
		return nil, false, nil
	}

	files := make([]model.FileDiff, 0, len(headers))
	for k, h := range headers {
		end := len(p.lines)
		if k+1 < len(headers) {
			end = headers[k+1].line
		}
		fd, err := p.readGitSection(h, end)
		if err != nil {
			return nil, true, err
		}
		files = append(files, fd)
	}
	return files, true, nil
}

// matchSimpleGitHeader matches "diff --git a/X b/X". Paths may contain
// spaces, so the line is split where both halves agree.
func (p *parser) matchSimpleGitHeader(i int) (gitHeader, bool) {
	rest := strings.TrimPrefix(p.lines[i], gitHeaderPrefix)
	if !strings.HasPrefix(rest, "a/") {
		return gitHeader{}, false
	}
	rest = rest[2:]
	if len(rest) < 4 || (len(rest)-3)%2 != 0 {
		return gitHeader{}, false
	}
	n := (len(rest) - 3) / 2
	if rest[n:n+3] != " b/" || rest[:n] != rest[n+3:] {
		return gitHeader{}, false
	}
	path := rest[:n]
	return gitHeader{
		line:   i,
		next:   i + 1,
		simple: true,
		fd: model.FileDiff{
			Operation: model.ChangeFile,
			Left:      model.FileEndpoint{Path: path},
			Right:     model.FileEndpoint{Path: path},
		},
	}, true
}

// matchCopyRenameHeader matches a header whose paths differ. The paths are
// taken from the "copy|rename from/to" lines and checked against the
// first line.
func (p *parser) matchCopyRenameHeader(i int) (gitHeader, bool) {
	var fd model.FileDiff
	j := i + 1
	if m := p.match(oldModeRe, j); m != nil {
		if n := p.match(newModeRe, j+1); n != nil {
			fd.OldMode, fd.NewMode = m[1], n[1]
			j += 2
		}
	}
	sim := p.match(similarityRe, j)
	if sim == nil {
		return gitHeader{}, false
	}
	from := p.match(copyRenameFromRe, j+1)
	to := p.match(copyRenameToRe, j+2)
	if from == nil || to == nil || from[1] != to[1] {
		return gitHeader{}, false
	}
	if p.lines[i] != gitHeaderPrefix+"a/"+from[2]+" b/"+to[2] {
		return gitHeader{}, false
	}

	fd.Similarity, _ = strconv.Atoi(sim[1])
	fd.Operation = model.RenameFile
	if from[1] == "copy" {
		fd.Operation = model.CopyFile
	}
	fd.Left.Path = from[2]
	fd.Right.Path = to[2]
	return gitHeader{line: i, next: j + 3, fd: fd}, true
}

// matchChangedPathsHeader matches "diff --git a/X b/Y" without a copy or
// rename block. The paths cannot be split from the first line alone, so
// they are taken from the file lines or the binary line that follow the
// optional mode and index lines.
func (p *parser) matchChangedPathsHeader(i int) (gitHeader, bool) {
	var fd model.FileDiff
	fd.Operation = model.ChangeFile
	j := i + 1
	next := j
	if m := p.match(oldModeRe, j); m != nil {
		if n := p.match(newModeRe, j+1); n != nil {
			fd.OldMode, fd.NewMode = m[1], n[1]
			j += 2
			next = j
		}
	}
	if p.match(indexRe, j) != nil {
		j++
	}

	var left, right string
	if m := p.match(plainBinaryRe, j); m != nil {
		left, right = m[1], m[2]
	} else {
		l, r := p.line(j), p.line(j+1)
		if !strings.HasPrefix(l, "--- ") || !strings.HasPrefix(r, "+++ ") {
			return gitHeader{}, false
		}
		left, _, _ = strings.Cut(strings.TrimPrefix(l, "--- "), "\t")
		right, _, _ = strings.Cut(strings.TrimPrefix(r, "+++ "), "\t")
	}
	if !strings.HasPrefix(left, "a/") || !strings.HasPrefix(right, "b/") {
		return gitHeader{}, false
	}
	if p.lines[i] != gitHeaderPrefix+left+" "+right {
		return gitHeader{}, false
	}

	fd.Left.Path = strings.TrimPrefix(left, "a/")
	fd.Right.Path = strings.TrimPrefix(right, "b/")
	return gitHeader{line: i, next: next, fd: fd}, true
}

func (p *parser) readGitSection(h gitHeader, end int) (model.FileDiff, error) {
	fd := h.fd
	pos := h.next
	leftName := "a/" + fd.Left.Path
	rightName := "b/" + fd.Right.Path
	allowEmpty := !h.simple

	if h.simple {
		if m := p.match(newFileModeRe, pos); m != nil && pos < end {
			fd.Operation = model.NewFile
			fd.NewMode = m[1]
			leftName = DevNull
			allowEmpty = true
			pos++
		} else if m := p.match(deletedFileModeRe, pos); m != nil && pos < end {
			fd.Operation = model.DeleteFile
			fd.OldMode = m[1]
			rightName = DevNull
			allowEmpty = true
			pos++
		} else if m := p.match(oldModeRe, pos); m != nil && pos+1 < end {
			if n := p.match(newModeRe, pos+1); n != nil {
				fd.Operation = model.ChangeMode
				fd.OldMode, fd.NewMode = m[1], n[1]
				allowEmpty = true
				pos += 2
			}
		}
	}

	if m := p.match(indexRe, pos); m != nil && pos < end {
		fd.Left.Revision = m[1]
		fd.Right.Revision = m[2]
		if m[3] != "" {
			fd.OldMode, fd.NewMode = m[3], m[3]
		}
		pos++
	}

	if p.blank(pos, end) {
		if !allowEmpty {
			return fd, NewMalformedFileSectionError(pos+1, fd.DisplayPath(), "missing file contents")
		}
		return fd, nil
	}

	switch line := p.lines[pos]; {
	case line == gitBinaryPatch:
		fd.IsBinary = true
		return fd, nil
	case line == "Binary files "+leftName+" and "+rightName+" differ":
		fd.IsBinary = true
		return fd, nil
	case isFileLine(line, "--- ", leftName) && pos+1 < end && isFileLine(p.lines[pos+1], "+++ ", rightName):
		chunks, eof, err := p.readChunks(pos+2, end, fd.DisplayPath())
		if err != nil {
			return fd, err
		}
		fd.Chunks = chunks
		fd.LastChunkTouchesEOF = eof
		return fd, nil
	default:
		return fd, NewMalformedFileSectionError(pos+1, fd.DisplayPath(), "unexpected line "+strconv.Quote(line))
	}
}

// isFileLine matches "--- name" optionally followed by tab-separated
// metadata
func isFileLine(line, prefix, name string) bool {
	want := prefix + name
	return line == want || strings.HasPrefix(line, want+"\t")
}

type plainHeader struct {
	line, next  int
	left, right string
	binary      bool
}

func (p *parser) readPlainPatch() ([]model.FileDiff, bool, error) {
	var headers []plainHeader
	for i := 0; i < len(p.lines); i++ {
		line := p.lines[i]
		if strings.HasPrefix(line, "--- ") && strings.HasPrefix(p.line(i+1), "+++ ") {
			headers = append(headers, plainHeader{
				line:  i,
				next:  i + 2,
				left:  plainName(line[4:]),
				right: plainName(p.lines[i+1][4:]),
			})
			i++
			continue
		}
		if m := plainBinaryRe.FindStringSubmatch(line); m != nil {
			headers = append(headers, plainHeader{line: i, next: i + 1, left: m[1], right: m[2], binary: true})
		}
	}
	if len(headers) == 0 {
		return nil, false, nil
	}

	files := make([]model.FileDiff, 0, len(headers))
	for k, h := range headers {
		end := len(p.lines)
		if k+1 < len(headers) {
			end = headers[k+1].line
		}

		fd := plainFileDiff(h.left, h.right)
		if h.binary {
			fd.IsBinary = true
			files = append(files, fd)
			continue
		}
		chunks, eof, err := p.readChunks(h.next, end, fd.DisplayPath())
		if err != nil {
			return nil, true, err
		}
		fd.Chunks = chunks
		fd.LastChunkTouchesEOF = eof
		files = append(files, fd)
	}
	return files, true, nil
}

func plainName(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		return s[:i]
	}
	return s
}

func plainFileDiff(left, right string) model.FileDiff {
	stripLeft := left == DevNull || strings.HasPrefix(left, "a/")
	stripRight := right == DevNull || strings.HasPrefix(right, "b/")
	if stripLeft && stripRight && !(left == DevNull && right == DevNull) {
		left = strings.TrimPrefix(left, "a/")
		right = strings.TrimPrefix(right, "b/")
	}

	fd := model.FileDiff{Operation: model.ChangeFile}
	switch {
	case left == DevNull:
		fd.Operation = model.NewFile
		left = right
	case right == DevNull:
		fd.Operation = model.DeleteFile
		right = left
	}
	fd.Left.Path = left
	fd.Right.Path = right
	return fd
}

type hunkLine struct {
	op        byte
	text      string
	noNewline bool
}

// readChunks reads the hunks in lines [from, end). The first line must be
// a hunk header.
func (p *parser) readChunks(from, end int, path string) ([]model.Chunk, bool, error) {
	if from >= end || !hunkHeaderRe.MatchString(p.lines[from]) {
		return nil, false, NewMalformedFileSectionError(from+1, path, "expected hunk header")
	}

	var starts []int
	for i := from; i < end; i++ {
		if hunkHeaderRe.MatchString(p.lines[i]) {
			starts = append(starts, i)
		}
	}

	chunks := make([]model.Chunk, 0, len(starts))
	eof := false
	for k, start := range starts {
		stop := end
		last := k == len(starts)-1
		if !last {
			stop = starts[k+1]
		}
		chunk, touched, err := p.readHunk(start, stop, last, path)
		if err != nil {
			return nil, false, err
		}
		chunks = append(chunks, chunk)
		eof = touched
	}
	return chunks, eof, nil
}

func (p *parser) readHunk(start, end int, last bool, path string) (model.Chunk, bool, error) {
	m := hunkHeaderRe.FindStringSubmatch(p.lines[start])
	leftStart, _ := strconv.Atoi(m[1])
	rightStart, _ := strconv.Atoi(m[3])
	chunk := model.Chunk{
		LeftStart:  leftStart - 1,
		RightStart: rightStart - 1,
		Header:     m[5],
	}

	var lines []hunkLine
	markers := 0
body:
	for i := start + 1; i < end; i++ {
		line := p.lines[i]
		if line == "" {
			if last {
				break
			}
			return chunk, false, NewMalformedFileSectionError(i+1, path, "empty line inside hunk")
		}
		switch line[0] {
		case ' ', '-', '+':
			lines = append(lines, hunkLine{op: line[0], text: line[1:]})
		case '\\':
			if !last {
				return chunk, false, NewMalformedFileSectionError(i+1, path, "no-newline marker before the last hunk")
			}
			if len(lines) == 0 || lines[len(lines)-1].noNewline {
				return chunk, false, NewMalformedFileSectionError(i+1, path, "misplaced no-newline marker")
			}
			lines[len(lines)-1].noNewline = true
			markers++
		default:
			if last {
				break body
			}
			return chunk, false, NewMalformedFileSectionError(i+1, path, "unexpected line "+strconv.Quote(line))
		}
	}

	if err := checkMarkers(lines, markers); err != nil {
		return chunk, false, NewMalformedFileSectionError(start+1, path, err.Error())
	}

	var rows []model.Row
	var deleted, inserted []string
	flush := func() {
		for k := 0; k < max(len(deleted), len(inserted)); k++ {
			l, r := model.Sep(), model.Sep()
			if k < len(deleted) {
				l = model.Line(deleted[k])
			}
			if k < len(inserted) {
				r = model.Line(inserted[k])
			}
			rows = append(rows, model.PairRow(l, r))
		}
		deleted, inserted = nil, nil
	}

	for _, l := range lines {
		switch l.op {
		case ' ':
			flush()
			rows = append(rows, model.EqualRow(l.text))
		case '-':
			deleted = append(deleted, l.text)
		case '+':
			inserted = append(inserted, l.text)
		}
	}

	if markers > 0 {
		// a side ending with a newline gets its empty last segment back
		if !lastMarked(lines, '-') {
			deleted = append(deleted, "")
		}
		if !lastMarked(lines, '+') {
			inserted = append(inserted, "")
		}
	}
	flush()

	chunk.Rows = rows
	return chunk, markers > 0, nil
}

// lastMarked reports whether the last line of one side carries the
// no-newline marker. Context lines belong to both sides.
func lastMarked(lines []hunkLine, op byte) bool {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].op == op || lines[i].op == ' ' {
			return lines[i].noNewline
		}
	}
	return false
}

// checkMarkers allows a marker only on the last line of a side
func checkMarkers(lines []hunkLine, markers int) error {
	if markers == 0 {
		return nil
	}
	for i, l := range lines {
		if !l.noNewline {
			continue
		}
		for _, later := range lines[i+1:] {
			if later.op == ' ' || later.op == l.op {
				return errors.New("no-newline marker is not on the last line")
			}
		}
		if l.op == ' ' && markers > 1 {
			return errors.New("conflicting no-newline markers")
		}
	}
	return nil
}
