package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// List is an ordered list of rules, one per line of the source they were
// loaded from. Order is significant: rules are always applied in List order.
type List []string

// ParseList reads rules from the given reader, one rule per line. Each line
// is trimmed of leading and trailing whitespace and lines that are empty
// after trimming are skipped. The remaining lines are returned in input
// order.
func ParseList(r io.Reader) (List, error) {
	var list List
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		list = append(list, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading rule list: %w", err)
	}
	return list, nil
}

// LoadList reads rules from the named file using ParseList. A missing file is
// not an error: it yields an empty List, the same as an empty file.
func LoadList(path string) (List, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("opening rule list %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	list, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("loading rule list %q: %w", path, err)
	}
	return list, nil
}
