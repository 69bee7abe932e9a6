package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Kind selects one of the store's two collections.
type Kind int

const (
	KindOpen Kind = iota
	KindDone
)

// Store holds the open and done tasks for one list. An id lives in at
// most one of the two maps at any time. The whole store is loaded from
// and flushed back to a pair of plain-text files; there is no locking,
// so concurrent writers race and the last one wins.
type Store struct {
	open map[string]*Task
	done map[string]*Task
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		open: make(map[string]*Task),
		done: make(map[string]*Task),
		now:  time.Now,
	}
}

// ListPaths returns the file pair backing list name under dir: the open
// file NAME and the hidden done file .NAME.done.
func ListPaths(dir, name string) (openPath, donePath string) {
	return filepath.Join(dir, name), filepath.Join(dir, "."+name+".done")
}

func (s *Store) mintID(text string) string {
	return MintID(text, s.now())
}

// Load reads both list files if they exist. A directory in place of a
// file is an InvalidStoreLayoutError; any read failure is a
// FileAccessError carrying the offending path.
func (s *Store) Load(openPath, donePath string) error {
	for _, f := range []struct {
		path string
		dest map[string]*Task
	}{
		{openPath, s.open},
		{donePath, s.done},
	} {
		info, err := os.Stat(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return &FileAccessError{Path: f.path, Err: err}
		}
		if info.IsDir() {
			return &InvalidStoreLayoutError{Path: f.path}
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return &FileAccessError{Path: f.path, Err: err}
		}
		for _, line := range strings.Split(string(data), "\n") {
			t, err := parseTaskline(line, s.mintID)
			if err != nil {
				return &FileAccessError{Path: f.path, Err: err}
			}
			if t != nil {
				f.dest[t.ID] = t
			}
		}
	}
	return nil
}

// Add creates an open task and returns its id. An explicit id pins the
// task to always display in full; otherwise the id is minted from the
// current time and the text. A parent prefix, when given, must resolve.
func (s *Store) Add(text, explicitID, parentPrefix string) (string, error) {
	now := s.now()
	id := explicitID
	show := explicitID != ""
	if id == "" {
		id = MintID(text, now)
	}

	var parentID string
	if parentPrefix != "" {
		parent, err := s.Resolve(parentPrefix)
		if err != nil {
			return "", err
		}
		parentID = parent.ID
	}

	s.open[id] = &Task{
		ID:         id,
		Text:       text,
		Timestamp:  float64(now.UnixNano()) / 1e9,
		ShowFullID: show,
		ParentID:   parentID,
	}
	return id, nil
}

// Resolve finds the single open task whose id starts with prefix. A
// prefix matching several tasks still resolves when it equals one of
// their full ids; otherwise the result is an AmbiguousPrefixError, and
// no match at all is an UnknownPrefixError.
func (s *Store) Resolve(prefix string) (*Task, error) {
	var matched []string
	for id := range s.open {
		if strings.HasPrefix(id, prefix) {
			matched = append(matched, id)
		}
	}
	switch len(matched) {
	case 0:
		return nil, &UnknownPrefixError{Prefix: prefix}
	case 1:
		return s.open[matched[0]], nil
	}
	if t, ok := s.open[prefix]; ok {
		return t, nil
	}
	return nil, &AmbiguousPrefixError{Prefix: prefix}
}

// Edit replaces the task's text. A newText starting with "s/" or "/" is
// a sed-like substitution instead: the pattern is applied to the first
// occurrence only and the replacement may use $1-style capture
// references.
func (s *Store) Edit(prefix, newText string) error {
	t, err := s.Resolve(prefix)
	if err != nil {
		return err
	}
	if strings.HasPrefix(newText, "s/") || strings.HasPrefix(newText, "/") {
		newText, err = substitute(t.Text, newText)
		if err != nil {
			return err
		}
	}
	t.Text = newText
	if t.ID == "" {
		t.ID = s.mintID(newText)
	}
	return nil
}

// substitute applies an s/pattern/replacement/ expression to text once.
func substitute(text, expr string) (string, error) {
	expr = strings.TrimPrefix(expr, "s")
	expr = strings.TrimPrefix(expr, "/")
	expr = strings.TrimSuffix(expr, "/")
	pat, repl := splitUnescaped(expr, '/')

	re, err := regexp.Compile(pat)
	if err != nil {
		return "", fmt.Errorf("bad substitution pattern %q: %w", pat, err)
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil
	}
	expanded := re.ExpandString(nil, repl, text, loc)
	return text[:loc[0]] + string(expanded) + text[loc[1]:], nil
}

// splitUnescaped splits s at the first sep not preceded by a backslash.
func splitUnescaped(s string, sep byte) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep && (i == 0 || s[i-1] != '\\') {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// Tag applies a whitespace-separated tag spec to the task: a token adds
// that tag (duplicates are kept), a token prefixed with '-' removes the
// first matching tag and is a no-op when absent. An emptied tag list is
// dropped entirely so it is never persisted as [].
func (s *Store) Tag(prefix, spec string) error {
	t, err := s.Resolve(prefix)
	if err != nil {
		return err
	}
	for _, tok := range strings.Fields(spec) {
		if name, ok := strings.CutPrefix(tok, "-"); ok {
			removeTag(t, name)
		} else {
			t.Tags = append(t.Tags, tok)
		}
	}
	return nil
}

func removeTag(t *Task, name string) {
	for i, tag := range t.Tags {
		if tag == name {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			break
		}
	}
	if len(t.Tags) == 0 {
		t.Tags = nil
	}
}

// FinishResult reports what Finish did.
type FinishResult struct {
	// Blocked is set when the task has open sub-tasks and force was
	// unset; nothing was mutated. This is an expected outcome, not an
	// error.
	Blocked bool
	// Finished lists the ids moved to done, the task itself first.
	Finished []string
}

// Finish moves the task and every transitive open descendant to done.
// Without force a task with open direct children is left untouched and
// the result comes back Blocked. The descendant set is snapshotted
// before any mutation so the cascade never iterates a map it is
// shrinking.
func (s *Store) Finish(prefix string, force bool) (FinishResult, error) {
	t, err := s.Resolve(prefix)
	if err != nil {
		return FinishResult{}, err
	}
	if !force && len(s.openChildren(t.ID)) > 0 {
		return FinishResult{Blocked: true}, nil
	}

	ids := []string{t.ID}
	seen := map[string]bool{t.ID: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range s.openChildren(ids[i]) {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}

	for _, id := range ids {
		s.done[id] = s.open[id]
		delete(s.open, id)
	}
	return FinishResult{Finished: ids}, nil
}

// Remove deletes the task from the open list. Children are kept; their
// parent reference dangles and listings treat them as top-level. force
// is accepted for symmetry with Finish but nothing blocks a remove
// today.
func (s *Store) Remove(prefix string, force bool) error {
	t, err := s.Resolve(prefix)
	if err != nil {
		return err
	}
	_ = force
	delete(s.open, t.ID)
	return nil
}

func (s *Store) openChildren(id string) []string {
	var kids []string
	for cid, c := range s.open {
		if c.ParentID == id {
			kids = append(kids, cid)
		}
	}
	sort.Strings(kids)
	return kids
}

// OpenIDs returns the ids of all open tasks in sorted order.
func (s *Store) OpenIDs() []string {
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) collection(kind Kind) map[string]*Task {
	if kind == KindDone {
		return s.done
	}
	return s.open
}

// Row is one line of a listing: a task at its depth in the hierarchy.
type Row struct {
	ID       string
	Depth    int
	Children int
	Label    string
	Tags     []string
	Text     string
}

// ListOptions filter and shape a listing.
type ListOptions struct {
	// Grep keeps only tasks whose text contains it, case-insensitively.
	Grep string
	// ParentID restricts the listing to the subtree under that task;
	// empty means the whole collection from the top level down.
	ParentID string
	// Verbose labels every task with its full id instead of a prefix.
	Verbose bool
}

// List renders one collection as ordered display rows: top-level tasks
// by ascending timestamp, each followed by its matching children,
// indented. A task whose parent is missing from the collection counts
// as top-level rather than disappearing.
func (s *Store) List(kind Kind, opts ListOptions) []Row {
	tasks := s.collection(kind)

	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	labels := Prefixes(ids)
	for id, t := range tasks {
		if opts.Verbose || t.ShowFullID {
			labels[id] = id
		}
	}

	var rows []Row
	s.appendRows(&rows, tasks, labels, strings.ToLower(opts.Grep), opts.ParentID, 0)
	return rows
}

func (s *Store) appendRows(rows *[]Row, tasks map[string]*Task, labels map[string]string, grep, parentID string, depth int) {
	var level []*Task
	for _, t := range tasks {
		if !atLevel(tasks, t, parentID) {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Text), grep) {
			continue
		}
		level = append(level, t)
	}
	sort.Slice(level, func(i, j int) bool {
		if level[i].Timestamp != level[j].Timestamp {
			return level[i].Timestamp < level[j].Timestamp
		}
		return level[i].ID < level[j].ID
	})

	for _, t := range level {
		*rows = append(*rows, Row{
			ID:       t.ID,
			Depth:    depth,
			Children: countChildren(tasks, t.ID),
			Label:    labels[t.ID],
			Tags:     t.Tags,
			Text:     t.Text,
		})
		s.appendRows(rows, tasks, labels, grep, t.ID, depth+1)
	}
}

// atLevel reports whether t belongs at the level identified by parentID.
// The top level also adopts tasks whose parent is not in the collection,
// which keeps orphans visible after their parent was removed.
func atLevel(tasks map[string]*Task, t *Task, parentID string) bool {
	if parentID != "" {
		return t.ParentID == parentID
	}
	if t.ParentID == "" {
		return true
	}
	_, ok := tasks[t.ParentID]
	return !ok
}

func countChildren(tasks map[string]*Task, id string) int {
	n := 0
	for _, t := range tasks {
		if t.ParentID == id {
			n++
		}
	}
	return n
}

// FormatRows turns listing rows into printable lines, padding labels to
// a common column. quiet drops the label column entirely.
func FormatRows(rows []Row, quiet bool) []string {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", r.Depth))
		fmt.Fprintf(&b, "(%d) ", r.Children)
		if !quiet {
			fmt.Fprintf(&b, "%-*s - ", width, r.Label)
		}
		for _, tag := range r.Tags {
			fmt.Fprintf(&b, "[%s] ", tag)
		}
		b.WriteString(r.Text)
		lines = append(lines, b.String())
	}
	return lines
}

// Write flushes both collections back to their files, each sorted by id.
// With deleteIfEmpty an empty collection's file is removed instead of
// written as empty. Each file is written independently; a failure on the
// second leaves the first as already written.
func (s *Store) Write(openPath, donePath string, deleteIfEmpty bool) error {
	for _, f := range []struct {
		path  string
		tasks map[string]*Task
	}{
		{openPath, s.open},
		{donePath, s.done},
	} {
		info, err := os.Stat(f.path)
		exists := err == nil
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &FileAccessError{Path: f.path, Err: err}
		}
		if exists && info.IsDir() {
			return &InvalidStoreLayoutError{Path: f.path}
		}

		if len(f.tasks) == 0 && deleteIfEmpty {
			if exists {
				if err := os.Remove(f.path); err != nil {
					return &FileAccessError{Path: f.path, Err: err}
				}
			}
			continue
		}

		if err := os.WriteFile(f.path, []byte(strings.Join(tasklines(f.tasks), "")), 0o644); err != nil {
			return &FileAccessError{Path: f.path, Err: err}
		}
	}
	return nil
}
