// CLAUDE:SUMMARY External registry adapter: runs a configured CLI per query and regex-parses "name url [description]" lines.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// QueryPlaceholder in CommandRegistry.Args is replaced by the query.
const QueryPlaceholder = "{query}"

// ErrNoCommand is returned when the registry has no command configured.
var ErrNoCommand = errors.New("search: no registry command configured")

// lineRe matches "name https://url optional description".
var lineRe = regexp.MustCompile(`^\s*(\S+)\s+(https?://\S+)(?:\s+(.*?))?\s*$`)

// CommandRegistry shells out to a third-party registry CLI. Its output
// format is not ours: lines that do not match are ignored.
type CommandRegistry struct {
	Command string
	Args    []string
	Timeout time.Duration // Default: 30s.
	// MaxOutput caps the stdout bytes kept; a line cut by the cap is
	// dropped. Default: 1 MiB.
	MaxOutput int
}

// Search runs the command once for query.
func (r *CommandRegistry) Search(ctx context.Context, query string) ([]Candidate, error) {
	if r.Command == "" {
		return nil, ErrNoCommand
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = strings.ReplaceAll(a, QueryPlaceholder, query)
	}
	limit := r.MaxOutput
	if limit <= 0 {
		limit = 1 << 20
	}
	stdout := &cappedBuffer{max: limit}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrUnavailable, r.Command, err, strings.TrimSpace(stderr.String()))
	}
	return ParseLines(stdout.String()), nil
}

// cappedBuffer keeps at most max bytes and discards the rest while still
// reporting full writes, so the command is never blocked or failed by it.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room < len(p) {
		c.buf.Write(p[:max(room, 0)])
		c.truncated = true
		return len(p), nil
	}
	return c.buf.Write(p)
}

// String returns the kept output. When output was cut, the trailing
// partial line is dropped.
func (c *cappedBuffer) String() string {
	s := c.buf.String()
	if c.truncated {
		if i := strings.LastIndexByte(s, '\n'); i >= 0 {
			return s[:i+1]
		}
		return ""
	}
	return s
}

// ParseLines extracts candidates from "name url [description]" lines.
func ParseLines(out string) []Candidate {
	var cs []Candidate
	for line := range strings.Lines(out) {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		c := Candidate{Name: m[1], URL: m[2], Description: m[3]}
		c.Owner = ownerOf(c.URL)
		cs = append(cs, c)
	}
	return cs
}

// ownerOf returns the first path segment of a github.com URL.
func ownerOf(u string) string {
	rest, ok := strings.CutPrefix(u, "https://github.com/")
	if !ok {
		rest, ok = strings.CutPrefix(u, "http://github.com/")
	}
	if !ok {
		return ""
	}
	owner, _, _ := strings.Cut(rest, "/")
	return owner
}
