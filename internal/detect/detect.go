// Package detect sniffs input to decide whether it is a go test -json
// stream.
package detect

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown    Format = iota
	GoTestJSON        // go test -json NDJSON stream
	GoTestText        // plain go test or go test -v output
)

func (f Format) String() string {
	switch f {
	case GoTestJSON:
		return "go test -json"
	case GoTestText:
		return "go test text"
	default:
		return "unknown"
	}
}

// SniffSize is how many leading bytes Sniff needs to see.
const SniffSize = 4096

// Sniff examines the first bytes of input to determine format.
// Input must contain at least the first line.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	firstLine = bytes.TrimRight(firstLine, "\r")

	if firstLine[0] == '{' {
		if isGoTestJSON(firstLine) {
			return GoTestJSON
		}
		return Unknown
	}
	if isGoTestText(firstLine) {
		return GoTestText
	}
	return Unknown
}

var validActions = map[string]bool{
	"start": true, "run": true, "pause": true, "cont": true,
	"pass": true, "bench": true, "fail": true, "output": true, "skip": true,
}

func isGoTestJSON(line []byte) bool {
	var event struct {
		Action  string `json:"Action"`
		Package string `json:"Package"`
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return false
	}
	return validActions[event.Action]
}

var textPrefixes = [][]byte{
	[]byte("=== RUN"),
	[]byte("--- PASS"),
	[]byte("--- FAIL"),
	[]byte("--- SKIP"),
	[]byte("PASS"),
	[]byte("FAIL"),
	[]byte("ok  \t"),
	[]byte("?   \t"),
}

func isGoTestText(line []byte) bool {
	for _, p := range textPrefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
