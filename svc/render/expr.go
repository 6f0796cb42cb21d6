package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// scope is the evaluation context of a card template node.
type scope struct {
	data  any
	root  any
	index int
}

// lookup resolves a binding path such as "user.name", "items[0].title",
// "$root.owner" or "$index" against sc.
func lookup(path string, sc scope) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}

	cur := sc.data
	rest := path
	head, tail := splitHead(path)
	switch head {
	case "$root":
		cur, rest = sc.root, tail
	case "$data":
		cur, rest = sc.data, tail
	case "$index":
		if tail != "" {
			return nil, false
		}
		return json.Number(strconv.Itoa(sc.index)), true
	default:
		rest = "." + path
	}

	for rest != "" {
		var ok bool
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			cur, ok = member(cur, rest[:end])
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			key := strings.TrimSpace(rest[1:end])
			rest = rest[end+1:]
			if unq, quoted := unquote(key); quoted {
				cur, ok = member(cur, unq)
			} else {
				cur, ok = element(cur, key)
			}
		default:
			return nil, false
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func splitHead(path string) (string, string) {
	end := strings.IndexAny(path, ".[")
	if end < 0 {
		return path, ""
	}
	return path[:end], path[end:]
}

func member(v any, name string) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok || name == "" {
		return nil, false
	}
	val, ok := m[name]
	return val, ok
}

func element(v any, idx string) (any, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(arr) {
		return nil, false
	}
	return arr[i], true
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// stringify renders a bound value for interpolation into text. Null binds
// to the empty string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

var comparators = []string{"==", "!=", ">=", "<=", ">", "<"}

// evalCondition evaluates a "$when" expression. Supported forms are a
// path or literal, its negation with "!", binary comparisons and chains
// joined by "&&" and "||" ("&&" binds tighter).
func evalCondition(expr string, sc scope) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("%w: empty condition", ErrInvalidExpression)
	}

	if parts := strings.Split(expr, "||"); len(parts) > 1 {
		for _, p := range parts {
			ok, err := evalCondition(p, sc)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
	if parts := strings.Split(expr, "&&"); len(parts) > 1 {
		for _, p := range parts {
			ok, err := evalCondition(p, sc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}

	for _, op := range comparators {
		if i := strings.Index(expr, op); i > 0 {
			left := operand(expr[:i], sc)
			right := operand(expr[i+len(op):], sc)
			return compare(left, right, op), nil
		}
	}

	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		v, err := evalCondition(rest, sc)
		return !v, err
	}
	return truthy(operand(expr, sc)), nil
}

// operand resolves a literal or a binding path. Unresolved paths are nil.
func operand(s string, sc scope) any {
	s = strings.TrimSpace(s)
	if unq, ok := unquote(s); ok {
		return unq
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	v, _ := lookup(s, sc)
	return v
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func compare(a, b any, op string) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch op {
			case "==":
				return fa == fb
			case "!=":
				return fa != fb
			case ">":
				return fa > fb
			case "<":
				return fa < fb
			case ">=":
				return fa >= fb
			case "<=":
				return fa <= fb
			}
		}
	}

	sa, sb := stringify(a), stringify(b)
	switch op {
	case "==":
		return sa == sb
	case "!=":
		return sa != sb
	case ">":
		return sa > sb
	case "<":
		return sa < sb
	case ">=":
		return sa >= sb
	case "<=":
		return sa <= sb
	}
	return false
}

func number(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}
