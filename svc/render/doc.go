// Package render resolves placeholders in notification templates.
//
// Rendering runs in two passes. When ActionableEmail is among the requested
// types the content is first treated as a card template: "${path}"
// expressions are bound against the template data, objects carrying
// "$data" are re-scoped (or repeated for arrays) and objects whose "$when"
// evaluates false are dropped. The flat pass then replaces every "#key#"
// marker with the matching value from the template data.
//
//	out, err := render.Render(types, item.TemplateData, item.TemplateContent)
package render
