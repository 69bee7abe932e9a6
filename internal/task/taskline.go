package task

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// parseTaskline turns one line of a list file into a task. Blank lines
// and '#' comments yield (nil, nil). A line without a pipe is bare text
// kept editable by hand: it gets a freshly minted id and timestamp 0.
func parseTaskline(line string, mint func(text string) string) (*Task, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	sep := lastUnescapedPipe(line)
	if sep < 0 {
		return &Task{ID: mint(trimmed), Text: trimmed}, nil
	}

	var meta metadata
	if err := json.Unmarshal([]byte(line[sep+1:]), &meta); err != nil {
		return nil, fmt.Errorf("bad task metadata: %w", err)
	}
	return meta.task(strings.TrimSpace(line[:sep])), nil
}

// lastUnescapedPipe returns the index of the last '|' not preceded by a
// backslash, or -1. The metadata separator is the last pipe so task text
// may itself contain pipes.
func lastUnescapedPipe(line string) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == '|' && (i == 0 || line[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// tasklines serializes tasks sorted by id, padding every text to the
// widest one so the metadata column lines up when the file is opened in
// an editor.
func tasklines(tasks map[string]*Task) []string {
	ids := make([]string, 0, len(tasks))
	width := 0
	for id, t := range tasks {
		ids = append(ids, id)
		if len(t.Text) > width {
			width = len(t.Text)
		}
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		t := tasks[id]
		meta, err := json.Marshal(t.meta())
		if err != nil {
			// metadata only holds strings, bools and numbers
			panic(err)
		}
		lines = append(lines, fmt.Sprintf("%-*s | %s\n", width, t.Text, meta))
	}
	return lines
}
