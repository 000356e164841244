package solutionlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

// maxLineSize caps a single log line. Instance lines carry two n×n matrices
// and outgrow bufio's default token size quickly.
const maxLineSize = 64 << 20

// Parser reads events from a solution log one line at a time.
//
// Parser is not safe for concurrent use.
type Parser struct {
	sc      *bufio.Scanner
	line    int
	skipped int
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Parser{sc: sc}
}

// Next returns the next event. Blank lines are skipped, and so are lines
// that are valid JSON but carry no usable event: an unknown or missing type,
// a non-object line, or an instance or parameters line whose payload is null,
// absent or not an object. Next returns io.EOF once the input is exhausted and
// a *ParseError for a line that is not valid JSON.
func (p *Parser) Next() (Event, error) {
	for p.sc.Scan() {
		p.line++
		text := bytes.TrimSpace(p.sc.Bytes())
		if len(text) == 0 {
			continue
		}

		ev, ok, err := p.decode(text)
		if err != nil {
			return Event{}, &ParseError{Line: p.line, Raw: string(text), Err: err}
		}
		if !ok {
			p.skipped++
			continue
		}
		return ev, nil
	}
	if err := p.sc.Err(); err != nil {
		return Event{}, fmt.Errorf("read line %d: %w", p.line+1, err)
	}
	return Event{}, io.EOF
}

// decode turns one non-empty line into an event. ok is false for lines that
// carry no usable event; err is set only for malformed JSON.
func (p *Parser) decode(text []byte) (Event, bool, error) {
	if !json.Valid(text) {
		var v any
		return Event{}, false, json.Unmarshal(text, &v)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil {
		return Event{}, false, nil
	}
	var kind string
	if err := json.Unmarshal(fields["type"], &kind); err != nil {
		return Event{}, false, nil
	}

	ev := Event{Kind: EventKind(kind), Line: p.line}
	switch ev.Kind {
	case KindInstance:
		raw := fields["instance"]
		if !isObject(raw) {
			return Event{}, false, nil
		}
		ev.Instance = &Instance{}
		if err := json.Unmarshal(raw, ev.Instance); err != nil {
			return Event{}, false, fmt.Errorf("instance: %w", err)
		}
	case KindParameters:
		raw := fields["parameters"]
		if !isObject(raw) {
			return Event{}, false, nil
		}
		ev.Parameters = &Parameters{}
		if err := json.Unmarshal(raw, ev.Parameters); err != nil {
			return Event{}, false, fmt.Errorf("parameters: %w", err)
		}
	case KindSolution:
		ev.Solution = &SolutionRecord{}
		if err := json.Unmarshal(text, ev.Solution); err != nil {
			return Event{}, false, err
		}
		ev.Solution.Line = p.line
	default:
		return Event{}, false, nil
	}
	return ev, true, nil
}

// All returns the remaining events as an iterator. Iteration stops after the
// first error, which is yielded with a zero Event.
func (p *Parser) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := p.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// Line returns the number of lines consumed so far.
func (p *Parser) Line() int {
	return p.line
}

// Skipped returns how many non-empty lines carried no usable event.
func (p *Parser) Skipped() int {
	return p.skipped
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
