package dem

import (
	"fmt"
	"strconv"
	"strings"
)

// Options controls parsing behavior.
type Options struct {
	// Flatten expands repeat blocks and applies shift_detectors offsets,
	// yielding a flat mechanism list. A DEM containing repeat blocks cannot
	// be parsed without it; everything downstream operates on flat lists.
	Flatten bool
}

type instrKind int

const (
	instrError instrKind = iota
	instrDetector
	instrObservable
	instrShift
	instrRepeat
)

type target struct {
	kind  byte // 'D', 'L' or '^'
	index int
}

type instruction struct {
	kind    instrKind
	line    int
	text    string
	prob    float64
	targets []target
	count   int // repeat count or shift amount
	body    []instruction
}

// Parse converts DEM text into a flattened Model. It fails on malformed
// probabilities, negative or sparse detector/observable index spaces, empty
// mechanism target lists, a document with no error instructions at all, and
// (without Options.Flatten) repeat blocks.
func Parse(text string, opts Options) (*Model, error) {
	lines := strings.Split(text, "\n")
	instrs, rest, err := scanBlock(lines, 0, false)
	if err != nil {
		return nil, err
	}
	if rest < len(lines) {
		return nil, &ParseError{Line: rest + 1, Text: strings.TrimSpace(lines[rest]), Msg: "unmatched closing brace"}
	}
	if !opts.Flatten {
		if rep := findRepeat(instrs); rep != nil {
			return nil, &ParseError{Line: rep.line, Text: rep.text, Msg: "repeat block requires flattening"}
		}
	}

	st := &execState{
		detectors:   map[int]bool{},
		observables: map[int]bool{},
	}
	if err := st.exec(instrs, 0); err != nil {
		return nil, err
	}
	if len(st.mechanisms) == 0 {
		return nil, &ParseError{Msg: "no error mechanisms"}
	}

	numDet, err := denseDimension(st.detectors, "detector", "D")
	if err != nil {
		return nil, err
	}
	numObs, err := denseDimension(st.observables, "observable", "L")
	if err != nil {
		return nil, err
	}

	return &Model{
		NumDetectors:   numDet,
		NumObservables: numObs,
		Mechanisms:     st.mechanisms,
	}, nil
}

// scanBlock consumes lines starting at index start until end of input, or
// until a closing brace when inBlock is set. It returns the instructions and
// the index of the first unconsumed line.
func scanBlock(lines []string, start int, inBlock bool) ([]instruction, int, error) {
	var out []instruction
	i := start
	for i < len(lines) {
		raw := lines[i]
		text := strings.TrimSpace(raw)
		if idx := strings.Index(text, "#"); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
		}
		if text == "" {
			i++
			continue
		}
		if text == "}" {
			if !inBlock {
				return nil, i, &ParseError{Line: i + 1, Text: text, Msg: "unmatched closing brace"}
			}
			return out, i + 1, nil
		}

		instr, err := scanInstruction(text, i+1)
		if err != nil {
			return nil, i, err
		}
		if instr.kind == instrRepeat {
			body, next, berr := scanBlock(lines, i+1, true)
			if berr != nil {
				return nil, i, berr
			}
			instr.body = body
			i = next
			out = append(out, instr)
			continue
		}
		out = append(out, instr)
		i++
	}
	if inBlock {
		return nil, i, &ParseError{Line: len(lines), Text: "", Msg: "unterminated repeat block"}
	}
	return out, i, nil
}

func scanInstruction(text string, lineNo int) (instruction, error) {
	instr := instruction{line: lineNo, text: text}
	fail := func(msg string) (instruction, error) {
		return instruction{}, &ParseError{Line: lineNo, Text: text, Msg: msg}
	}

	name := text
	rest := ""
	if idx := strings.IndexAny(text, "( \t"); idx >= 0 {
		name = text[:idx]
		rest = text[idx:]
	}

	var args []string
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return fail("missing closing parenthesis")
		}
		for _, a := range strings.Split(rest[1:end], ",") {
			args = append(args, strings.TrimSpace(a))
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	fields := strings.Fields(rest)

	switch name {
	case "error":
		if len(args) != 1 {
			return fail("error instruction takes exactly one probability argument")
		}
		p, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fail(fmt.Sprintf("malformed probability %q", args[0]))
		}
		if p <= 0 || p >= 1 {
			return fail(fmt.Sprintf("probability %v outside (0, 1)", p))
		}
		if len(fields) == 0 {
			return fail("error instruction with no targets")
		}
		instr.kind = instrError
		instr.prob = p
		for _, f := range fields {
			t, err := parseTarget(f)
			if err != nil {
				return fail(err.Error())
			}
			instr.targets = append(instr.targets, t)
		}
		return instr, nil

	case "detector":
		// Coordinate arguments, when present, are ignored.
		if len(fields) != 1 {
			return fail("detector instruction takes exactly one target")
		}
		t, err := parseTarget(fields[0])
		if err != nil || t.kind != 'D' {
			return fail(fmt.Sprintf("invalid detector target %q", fields[0]))
		}
		instr.kind = instrDetector
		instr.count = t.index
		return instr, nil

	case "logical_observable":
		if len(fields) != 1 {
			return fail("logical_observable instruction takes exactly one target")
		}
		t, err := parseTarget(fields[0])
		if err != nil || t.kind != 'L' {
			return fail(fmt.Sprintf("invalid observable target %q", fields[0]))
		}
		instr.kind = instrObservable
		instr.count = t.index
		return instr, nil

	case "shift_detectors":
		if len(fields) != 1 {
			return fail("shift_detectors takes exactly one amount")
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return fail(fmt.Sprintf("invalid shift amount %q", fields[0]))
		}
		instr.kind = instrShift
		instr.count = n
		return instr, nil

	case "repeat":
		if len(fields) != 2 || fields[1] != "{" {
			return fail("repeat expects a count followed by {")
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return fail(fmt.Sprintf("invalid repeat count %q", fields[0]))
		}
		instr.kind = instrRepeat
		instr.count = n
		return instr, nil

	default:
		return fail(fmt.Sprintf("unknown instruction %q", name))
	}
}

func parseTarget(tok string) (target, error) {
	if tok == "^" {
		return target{kind: '^'}, nil
	}
	if len(tok) < 2 || (tok[0] != 'D' && tok[0] != 'L') {
		return target{}, fmt.Errorf("invalid target %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 {
		return target{}, fmt.Errorf("invalid target index %q", tok)
	}
	return target{kind: tok[0], index: n}, nil
}

func findRepeat(instrs []instruction) *instruction {
	for i := range instrs {
		if instrs[i].kind == instrRepeat {
			return &instrs[i]
		}
	}
	return nil
}

type execState struct {
	mechanisms  []Mechanism
	detectors   map[int]bool
	observables map[int]bool
}

// exec walks the instruction list, applying the running detector offset and
// expanding repeat bodies, and accumulates mechanisms plus the referenced
// index sets.
func (st *execState) exec(instrs []instruction, offset int) error {
	for _, in := range instrs {
		switch in.kind {
		case instrError:
			mech, err := st.buildMechanism(in, offset)
			if err != nil {
				return err
			}
			st.mechanisms = append(st.mechanisms, mech)
		case instrDetector:
			st.detectors[in.count+offset] = true
		case instrObservable:
			st.observables[in.count] = true
		case instrShift:
			offset += in.count
		case instrRepeat:
			step := shiftOf(in.body)
			for i := 0; i < in.count; i++ {
				if err := st.exec(in.body, offset); err != nil {
					return err
				}
				offset += step
			}
		}
	}
	return nil
}

// shiftOf computes the net detector shift produced by one pass over a block
// body, including nested repeats.
func shiftOf(instrs []instruction) int {
	total := 0
	for _, in := range instrs {
		switch in.kind {
		case instrShift:
			total += in.count
		case instrRepeat:
			total += shiftOf(in.body) * in.count
		}
	}
	return total
}

func (st *execState) buildMechanism(in instruction, offset int) (Mechanism, error) {
	mech := Mechanism{Probability: in.prob}
	detToggle := map[int]bool{}
	obsToggle := map[int]bool{}
	flush := func() error {
		comp := Component{
			Detectors:   sortedSet(detToggle),
			Observables: sortedSet(obsToggle),
		}
		if len(comp.Detectors) == 0 && len(comp.Observables) == 0 {
			return &ParseError{Line: in.line, Text: in.text, Msg: "empty decomposition component"}
		}
		mech.Components = append(mech.Components, comp)
		detToggle = map[int]bool{}
		obsToggle = map[int]bool{}
		return nil
	}

	for _, t := range in.targets {
		switch t.kind {
		case 'D':
			idx := t.index + offset
			detToggle[idx] = !detToggle[idx]
			st.detectors[idx] = true
		case 'L':
			obsToggle[t.index] = !obsToggle[t.index]
			st.observables[t.index] = true
		case '^':
			if err := flush(); err != nil {
				return Mechanism{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return Mechanism{}, err
	}
	return mech, nil
}

// denseDimension validates that the referenced index set is dense and
// zero-based and returns its size.
func denseDimension(set map[int]bool, what, prefix string) (int, error) {
	max := -1
	for idx := range set {
		if idx > max {
			max = idx
		}
	}
	for i := 0; i <= max; i++ {
		if !set[i] {
			return 0, &ParseError{Msg: fmt.Sprintf("sparse %s index space: %s%d is never declared or referenced", what, prefix, i)}
		}
	}
	return max + 1, nil
}
