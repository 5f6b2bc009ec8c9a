// Package wordfind emits every input line containing an exact whole-word
// match of the search word. Each split's matches keep their original order,
// and the result concatenates splits in index order.
package wordfind

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"pkg.jsn.cam/forkreduce/pkg/forkreduce"
)

const Description = "emit lines containing an exact whole-word match"

var ErrMissingParams = errors.New("wordfind: user data must be *wordfind.Params with a non-empty Word")

// Params is the job's user data, visible read-only to every map worker.
type Params struct {
	Word string
}

// Map writes each line of the split containing Params.Word as a whole word,
// once per line, verbatim.
func Map(split forkreduce.DataSplit, out io.Writer) error {
	params, ok := split.UserData.(*Params)
	if !ok || params.Word == "" {
		return ErrMissingParams
	}

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(split.Data)
	for scanner.Scan() {
		line := scanner.Text()
		if containsWholeWord(line, params.Word) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("write match: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read split: %w", err)
	}
	return w.Flush()
}

// Reduce concatenates the intermediate files in split-index order.
func Reduce(inputs []io.ReadSeeker, out io.Writer) error {
	for i, in := range inputs {
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind intermediate %d: %w", i, err)
		}
		if _, err := io.Copy(out, in); err != nil {
			return fmt.Errorf("copy intermediate %d: %w", i, err)
		}
	}
	return nil
}

// containsWholeWord reports whether word occurs in line with a word boundary
// on both sides: preceded by start-of-line or a space, followed by
// end-of-line, a space, a comma, or a period.
func containsWholeWord(line, word string) bool {
	for start := 0; start+len(word) <= len(line); {
		idx := strings.Index(line[start:], word)
		if idx < 0 {
			return false
		}

		begin := start + idx
		end := begin + len(word)

		beforeOK := begin == 0 || line[begin-1] == ' '
		afterOK := end == len(line) || line[end] == ' ' || line[end] == ',' || line[end] == '.'
		if beforeOK && afterOK {
			return true
		}
		start = begin + len(word)
	}
	return false
}
