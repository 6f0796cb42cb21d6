package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	keyData = "$data"
	keyWhen = "$when"
)

var bindingRe = regexp.MustCompile(`\$\{([^{}]*)\}`)

// ExpandCard expands a card template against a JSON data document. Content
// that is not a JSON document is treated as text and only interpolated.
func ExpandCard(content string, data json.RawMessage) (string, error) {
	var root any
	if len(bytes.TrimSpace(data)) > 0 {
		v, err := decode(data)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
		root = v
	}
	sc := scope{data: root, root: root}

	tmpl, err := decode([]byte(content))
	if err != nil {
		return interpolate(content, sc), nil
	}

	out, err := expand(tmpl, sc)
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out[0]); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidTemplate)
	}
	return v, nil
}

// expand returns the nodes produced by node: none when a "$when" drops it,
// several when "$data" binds an array.
func expand(node any, sc scope) ([]any, error) {
	switch n := node.(type) {
	case map[string]any:
		return expandObject(n, sc)
	case []any:
		out := make([]any, 0, len(n))
		for _, el := range n {
			res, err := expand(el, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, res...)
		}
		return []any{out}, nil
	case string:
		return []any{bind(n, sc)}, nil
	default:
		return []any{node}, nil
	}
}

func expandObject(obj map[string]any, sc scope) ([]any, error) {
	raw, ok := obj[keyData]
	if !ok {
		return instantiate(obj, sc)
	}

	bound, err := expand(raw, sc)
	if err != nil {
		return nil, err
	}
	var data any
	if len(bound) > 0 {
		data = bound[0]
	}

	items, ok := data.([]any)
	if !ok {
		return instantiate(obj, scope{data: data, root: sc.root, index: sc.index})
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		res, err := instantiate(obj, scope{data: item, root: sc.root, index: i})
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// instantiate produces one copy of obj in sc, or none if "$when" is false.
func instantiate(obj map[string]any, sc scope) ([]any, error) {
	if when, ok := obj[keyWhen]; ok {
		keep, err := condition(when, sc)
		if err != nil {
			return nil, err
		}
		if !keep {
			return nil, nil
		}
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == keyData || k == keyWhen {
			continue
		}
		res, err := expand(v, sc)
		if err != nil {
			return nil, err
		}
		switch len(res) {
		case 0:
		case 1:
			out[k] = res[0]
		default:
			out[k] = res
		}
	}
	return []any{out}, nil
}

func condition(v any, sc scope) (bool, error) {
	switch c := v.(type) {
	case bool:
		return c, nil
	case string:
		expr := strings.TrimSpace(c)
		if m := bindingRe.FindStringSubmatch(expr); m != nil && m[0] == expr {
			expr = m[1]
		}
		return evalCondition(expr, sc)
	default:
		return truthy(v), nil
	}
}

// bind resolves bindings in s. A string that is exactly one binding takes
// the bound value with its JSON type; otherwise bindings are interpolated.
// Unresolved bindings are left as written.
func bind(s string, sc scope) any {
	if m := bindingRe.FindStringSubmatch(s); m != nil && m[0] == s {
		v, ok := lookup(m[1], sc)
		if !ok {
			return s
		}
		if v == nil {
			return ""
		}
		return v
	}
	return interpolate(s, sc)
}

func interpolate(s string, sc scope) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return bindingRe.ReplaceAllStringFunc(s, func(match string) string {
		v, ok := lookup(match[2:len(match)-1], sc)
		if !ok {
			return match
		}
		return stringify(v)
	})
}
