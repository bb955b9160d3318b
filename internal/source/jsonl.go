package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
)

// JSONL reads one food definition per line:
//
//	{"id":"apl","name":"Apple","keywords":["apple"],"calories":95}
//	{"id":"snd","components":[{"food_id":"apl","servings":1}]}
//
// Blank lines and lines starting with # are skipped.
type JSONL struct {
	Path string
}

// LineError is a line of a JSONL file that could not be parsed.
type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseError lists the unparseable lines of a file. Fetch returns it
// together with the definitions that did parse.
type ParseError struct {
	Path  string
	Lines []LineError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %d invalid line(s), first at line %d: %s",
		e.Path, len(e.Lines), e.Lines[0].Line, e.Lines[0].Message)
}

func (s JSONL) Name() string { return "jsonl:" + s.Path }

func (s JSONL) Fetch(ctx context.Context) ([]food.Definition, error) {
	if s.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	file, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(s.Path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open food file: %w", err))
	}
	defer file.Close()

	var (
		defs    []food.Definition
		invalid []LineError
	)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var def food.Definition
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			invalid = append(invalid, LineError{Line: lineNum, Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if strings.TrimSpace(def.ID) == "" {
			invalid = append(invalid, LineError{Line: lineNum, Message: "id is required"})
			continue
		}
		defs = append(defs, def)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read food file: %w", err))
	}

	if len(invalid) > 0 {
		return defs, &ParseError{Path: s.Path, Lines: invalid}
	}
	return defs, nil
}
