package process

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
)

// ParseEnvFile reads a shell-sourceable KEY=VALUE file and returns the
// merged key/value pairs. Shell quoting in values is honored (so
// FOO="bar baz" yields VALUE="bar baz") without ever invoking a
// shell: each non-blank, non-comment line is tokenized with shlex,
// which does the quote/escape handling a "source" would do.
func ParseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "export ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil || len(tokens) == 0 {
			return nil, fmt.Errorf("%s:%d: invalid env line %q", path, lineNo, scanner.Text())
		}
		assignment := strings.Join(tokens, " ")
		key, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY=VALUE, got %q", path, lineNo, scanner.Text())
		}
		out[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
