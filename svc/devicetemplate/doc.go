// Package devicetemplate stores native push templates.
//
// A template is addressed by device notification type (Badge, Raw, Toast,
// Tile) and provider platform (wns, apns, fcm). Templates can be seeded from
// a YAML file:
//
//	templates:
//	  - type: Toast
//	    platform: fcm
//	    content: '{"notification":{"title":"#title#","body":"#body#"}}'
package devicetemplate
