package forkreduce

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// On-disk artifact names, fixed per job directory. Two jobs sharing one
// directory would clobber each other, so only one job may run per directory.
const (
	splitFilePattern        = "split-%d"
	intermediateFilePattern = "mr-%d.itm"
	resultFileName          = "mr.rst"
)

func (e *Engine) splitFileName(index int) string {
	return filepath.Join(e.dir, fmt.Sprintf(splitFilePattern, index))
}

func (e *Engine) intermediateFileName(index int) string {
	return filepath.Join(e.dir, fmt.Sprintf(intermediateFilePattern, index))
}

func (e *Engine) resultFileName() string {
	return filepath.Join(e.dir, resultFileName)
}

// splitInput divides the input file into spec.SplitCount line-aligned chunk
// files. The target chunk size is the input byte size divided by the split
// count; whole lines accumulate into a chunk until the target is reached, so
// a chunk can overshoot the target by up to one line and is never cut
// mid-line. The final chunk absorbs every remaining line regardless of size.
// When the input runs out of lines early, the remaining split files are
// created empty.
//
// Any failure here is a fatal setup error for the whole job.
func (e *Engine) splitInput(spec *JobSpec) error {
	in, err := os.Open(spec.InputPath)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat input file: %w", err)
	}
	target := info.Size() / int64(spec.SplitCount)

	log.Printf("[SPLIT] %s: %d bytes into %d chunks (target %d bytes each)",
		spec.InputPath, info.Size(), spec.SplitCount, target)

	reader := bufio.NewReader(in)
	for i := 0; i < spec.SplitCount; i++ {
		if err := e.writeSplit(reader, i, spec.SplitCount, target); err != nil {
			return err
		}
	}
	return nil
}

// writeSplit materializes chunk index as its own file, consuming lines from
// reader. The reader's position carries over between chunks.
func (e *Engine) writeSplit(reader *bufio.Reader, index, count int, target int64) error {
	name := e.splitFileName(index)
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create split file %s: %w", name, err)
	}
	defer out.Close()

	if index == count-1 {
		// Last chunk takes everything left.
		if _, err := io.Copy(out, reader); err != nil {
			return fmt.Errorf("write split file %s: %w", name, err)
		}
		return nil
	}

	var written int64
	for written < target {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := out.Write(line); werr != nil {
				return fmt.Errorf("write split file %s: %w", name, werr)
			}
			written += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
	return nil
}
