// Package lettercount counts ASCII letter frequencies across the input,
// case-insensitively. Intermediate and result files both hold one
// "LETTER COUNT" line per letter seen, uppercase, in alphabetical order.
package lettercount

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pkg.jsn.cam/forkreduce/pkg/forkreduce"
)

const Description = "count A-Z letter frequencies, case-insensitive"

// Map tallies letters in one split and writes per-letter counts.
func Map(split forkreduce.DataSplit, out io.Writer) error {
	var counts [26]int

	buf := make([]byte, 32*1024)
	for {
		n, err := split.Data.Read(buf)
		for _, c := range buf[:n] {
			switch {
			case c >= 'A' && c <= 'Z':
				counts[c-'A']++
			case c >= 'a' && c <= 'z':
				counts[c-'a']++
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read split: %w", err)
		}
	}

	return writeCounts(out, counts)
}

// Reduce sums the per-split counts into final totals. Malformed lines are
// skipped rather than failing the whole job.
func Reduce(inputs []io.ReadSeeker, out io.Writer) error {
	var totals [26]int

	for i, in := range inputs {
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind intermediate %d: %w", i, err)
		}

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			letter, count, ok := parseCountLine(scanner.Text())
			if !ok {
				continue
			}
			totals[letter-'A'] += count
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read intermediate %d: %w", i, err)
		}
	}

	return writeCounts(out, totals)
}

func parseCountLine(line string) (letter byte, count int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || len(fields[0]) != 1 {
		return 0, 0, false
	}
	letter = fields[0][0]
	if letter < 'A' || letter > 'Z' {
		return 0, 0, false
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return letter, count, true
}

func writeCounts(out io.Writer, counts [26]int) error {
	w := bufio.NewWriter(out)
	for i, count := range counts {
		if count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%c %d\n", 'A'+i, count); err != nil {
			return fmt.Errorf("write counts: %w", err)
		}
	}
	return w.Flush()
}
