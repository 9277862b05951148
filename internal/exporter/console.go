package exporter

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Echo prints each line of a written report to w with surrounding whitespace stripped
func Echo(w io.Writer, report []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(report))
	scanner.Buffer(make([]byte, 0, 64*1024), len(report)+1)

	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, strings.TrimSpace(scanner.Text())); err != nil {
			return fmt.Errorf("failed to echo report: %w", err)
		}
	}
	return scanner.Err()
}
