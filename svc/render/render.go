package render

import (
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/notifyhub/svc/notification"
)

// Render resolves content against data. A nil types list runs the flat pass
// only.
func Render(types []notification.Type, data notification.TemplateData, content string) (string, error) {
	if data.IsZero() || content == "" {
		return content, nil
	}

	out := content
	if notification.HasType(types, notification.ActionableEmail) {
		doc, err := data.Document()
		if err != nil {
			return "", err
		}
		expanded, err := ExpandCard(out, doc)
		if err != nil {
			return "", err
		}
		out = strings.Trim(unescape(expanded), `"`)
	}

	flat, err := data.Flat()
	if err != nil {
		return "", err
	}
	return ReplaceFlat(out, flat), nil
}

// ReplaceFlat replaces every "#key#" in content with values[key]. Keys are
// applied in sorted order so the result does not depend on map iteration.
func ReplaceFlat(content string, values map[string]string) string {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		content = strings.ReplaceAll(content, "#"+k+"#", values[k])
	}
	return content
}
