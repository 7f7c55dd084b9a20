package shef

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// MessageType is the three SHEF message tags (§4.3).
type MessageType int

const (
	MessageA MessageType = iota
	MessageE
	MessageB
)

func (t MessageType) String() string {
	switch t {
	case MessageA:
		return "A"
	case MessageE:
		return "E"
	case MessageB:
		return "B"
	default:
		return "?"
	}
}

// AssembledMessage is one complete SHEF message, its lines already stripped
// of trailers and inline comment fields (§4.3).
type AssembledMessage struct {
	Type      MessageType
	Revised   bool
	StartLine int
	Lines     []string
}

var reInlineComment = regexp.MustCompile(`:[^:]*:`)

// cleanLine strips trailing message terminators (=, &, &=) and removes
// inline :...: comment fields, in that order, before any further
// processing (§4.3).
func cleanLine(s string) string {
	s = strings.TrimRight(s, "\r")
	switch {
	case strings.HasSuffix(s, "&="):
		s = strings.TrimSuffix(s, "&=")
	case strings.HasSuffix(s, "="):
		s = strings.TrimSuffix(s, "=")
	case strings.HasSuffix(s, "&"):
		s = strings.TrimSuffix(s, "&")
	}
	return reInlineComment.ReplaceAllString(s, "")
}

type lineRec struct {
	text string
	num  int
}

// assemblerState names the C3 state machine's positions in table §4.3.
type assemblerState int

const (
	stateIdle assemblerState = iota
	stateAOrEBody
	stateBHeader
	stateBBody
)

// Assembler consumes lines from an input source via a double-ended line
// queue (push-back supported) and assembles complete SHEF messages,
// stripping comment fields and trailers per line (§4.3). Reads are
// batched; BatchSize lines are pulled from the underlying scanner before
// the optional Cancel callback is consulted, giving the only cooperative
// suspension point the parser has (§5).
type Assembler struct {
	sc      *bufio.Scanner
	queue   []lineRec
	lineNum int

	diag *Diagnostics

	BatchSize int
	Cancel    func() bool

	batchCount int
	cancelled  bool
}

// NewAssembler returns an Assembler reading from r and reporting
// diagnostics through diag.
func NewAssembler(r io.Reader, diag *Diagnostics) *Assembler {
	return &Assembler{sc: bufio.NewScanner(r), diag: diag, BatchSize: 100}
}

func (a *Assembler) nextLine() (lineRec, bool) {
	if len(a.queue) > 0 {
		l := a.queue[0]
		a.queue = a.queue[1:]
		return l, true
	}
	if a.cancelled {
		return lineRec{}, false
	}
	if !a.sc.Scan() {
		return lineRec{}, false
	}
	a.lineNum++
	a.batchCount++
	if a.BatchSize > 0 && a.batchCount >= a.BatchSize {
		a.batchCount = 0
		if a.Cancel != nil && a.Cancel() {
			a.cancelled = true
		}
	}
	return lineRec{text: a.sc.Text(), num: a.lineNum}, true
}

func (a *Assembler) pushBack(l lineRec) {
	a.queue = append([]lineRec{l}, a.queue...)
}

// Err returns the first non-EOF error the underlying scanner reported.
func (a *Assembler) Err() error {
	return a.sc.Err()
}

func parseMessageType(letter string) MessageType {
	switch strings.ToUpper(letter) {
	case "A":
		return MessageA
	case "E":
		return MessageE
	case "B":
		return MessageB
	}
	return MessageA
}

// NextMessage drives the §4.3 state machine and returns the next complete
// message, or io.EOF once the input (and any pushed-back lines) are
// exhausted with no message in flight.
func (a *Assembler) NextMessage() (*AssembledMessage, error) {
	state := stateIdle
	var msg *AssembledMessage

	for {
		l, ok := a.nextLine()
		if !ok {
			switch state {
			case stateBHeader, stateBBody:
				a.diag.Warning(msg.StartLine, "not finished before input exhausted - missing .END appended")
				msg.Lines = append(msg.Lines, ".END")
				return msg, nil
			default:
				if msg != nil {
					return msg, nil
				}
				return nil, io.EOF
			}
		}

		cleaned := cleanLine(l.text)

		switch state {
		case stateIdle:
			if strings.TrimSpace(cleaned) == "" {
				continue
			}
			if m := reAnyMessageTag.FindStringSubmatch(cleaned); m != nil {
				typ := parseMessageType(m[1])
				msg = &AssembledMessage{Type: typ, Revised: m[2] != "", StartLine: l.num}
				msg.Lines = append(msg.Lines, cleaned)
				if typ == MessageB {
					state = stateBHeader
				} else {
					state = stateAOrEBody
				}
				continue
			}
			if aerr := a.diag.Error(l.num, l.num, "invalid line: %q", cleaned); aerr != nil {
				return nil, aerr
			}
			continue

		case stateAOrEBody:
			if isContinuationOf(msg.Type, cleaned) {
				msg.Lines = append(msg.Lines, cleaned)
				continue
			}
			a.pushBack(l)
			return msg, nil

		case stateBHeader:
			if reContinuationB.MatchString(cleaned) {
				msg.Lines = append(msg.Lines, cleaned)
				continue
			}
			if reEndLine.MatchString(cleaned) {
				msg.Lines = append(msg.Lines, cleaned)
				return msg, nil
			}
			if strings.HasPrefix(strings.TrimSpace(cleaned), ".") {
				a.diag.Warning(l.num, "data between header lines, discarding: %q", cleaned)
				continue
			}
			msg.Lines = append(msg.Lines, cleaned)
			state = stateBBody
			continue

		case stateBBody:
			if reEndLine.MatchString(cleaned) {
				msg.Lines = append(msg.Lines, cleaned)
				return msg, nil
			}
			if reAnyMessageTag.MatchString(cleaned) {
				a.pushBack(l)
				a.diag.Warning(msg.StartLine, "missing .END appended")
				msg.Lines = append(msg.Lines, ".END")
				return msg, nil
			}
			msg.Lines = append(msg.Lines, cleaned)
			continue
		}
	}
}

func isContinuationOf(t MessageType, cleaned string) bool {
	m := reContinuationAE.FindStringSubmatch(cleaned)
	if m == nil {
		return false
	}
	return parseMessageType(m[1]) == t
}
