// Package mongo connects to the MongoDB deployment that stores delivery
// status rows and device notification templates.
package mongo
