package primitives

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSyntax reports a script line that cannot be parsed.
	ErrSyntax = errors.New("syntax error")
)

// ParseLine parses one script line:
//
//	osc 7               float to the primary input
//	osc:1 3             float to auxiliary channel 0
//	osc bang            trigger
//	osc 3 4             list (also: osc list 3 4)
//	osc rando 5 102     method call
//	osc expr hypot(3\, 4)
//
// Blank lines and lines starting with '#' report ok == false. A trailing
// unescaped ';' is ignored.
func ParseLine(line string) (msg Message, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Message{}, false, nil
	}
	if strings.HasSuffix(line, ";") && !strings.HasSuffix(line, `\;`) {
		line = strings.TrimSpace(strings.TrimSuffix(line, ";"))
	}

	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	target, inlet, err := parseAddress(head)
	if err != nil {
		return Message{}, false, err
	}
	if rest == "" {
		return Message{}, false, fmt.Errorf("%q: missing payload: %w", line, ErrSyntax)
	}

	selector, args, _ := strings.Cut(rest, " ")
	args = strings.TrimSpace(args)

	if selector == "expr" {
		return checkInlet(NewExpr(target, args), inlet, line)
	}

	if _, numErr := strconv.ParseFloat(selector, 64); numErr == nil {
		vs, err := parseValues(rest)
		if err != nil {
			return Message{}, false, fmt.Errorf("%q: %w", line, err)
		}
		if len(vs) == 1 {
			return NewFloat(target, inlet, vs[0]), true, nil
		}
		return checkInlet(NewList(target, vs...), inlet, line)
	}

	vs, err := parseValues(args)
	if err != nil {
		return Message{}, false, fmt.Errorf("%q: %w", line, err)
	}
	switch selector {
	case "bang":
		if len(vs) > 0 {
			return Message{}, false, fmt.Errorf("%q: bang takes no arguments: %w", line, ErrSyntax)
		}
		msg = NewBang(target)
	case "float":
		if len(vs) != 1 {
			return Message{}, false, fmt.Errorf("%q: float takes one argument: %w", line, ErrSyntax)
		}
		return NewFloat(target, inlet, vs[0]), true, nil
	case "list":
		msg = NewList(target, vs...)
	default:
		msg = NewMethod(target, selector, vs...)
	}
	return checkInlet(msg, inlet, line)
}

func parseAddress(head string) (string, int, error) {
	target, inletStr, hasInlet := strings.Cut(head, ":")
	if target == "" {
		return "", 0, fmt.Errorf("%q: empty target: %w", head, ErrSyntax)
	}
	if !hasInlet {
		return target, 0, nil
	}
	inlet, err := strconv.Atoi(inletStr)
	if err != nil || inlet < 0 {
		return "", 0, fmt.Errorf("%q: bad inlet: %w", head, ErrSyntax)
	}
	return target, inlet, nil
}

func parseValues(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	vs := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", f, ErrSyntax)
		}
		vs[i] = v
	}
	return vs, nil
}

// checkInlet rejects anything but a float addressed to an auxiliary inlet.
func checkInlet(msg Message, inlet int, line string) (Message, bool, error) {
	if inlet > 0 {
		return Message{}, false, fmt.Errorf("%q: inlet %d accepts only floats: %w", line, inlet, ErrSyntax)
	}
	return msg, true, nil
}
