// Package binder decodes and validates HTTP request bodies for the typed
// handlers in package handler. Validation uses
// github.com/go-playground/validator/v10 and reports failures by JSON field
// name.
package binder
