// Package linecopy passes every input line through unchanged. It exists to
// exercise the engine's ordering guarantees: the result file reproduces the
// input lines in their original order.
package linecopy

import (
	"fmt"
	"io"

	"pkg.jsn.cam/forkreduce/pkg/forkreduce"
)

const Description = "copy input lines through unchanged"

// Map copies the split verbatim.
func Map(split forkreduce.DataSplit, out io.Writer) error {
	if _, err := io.Copy(out, split.Data); err != nil {
		return fmt.Errorf("copy split: %w", err)
	}
	return nil
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
