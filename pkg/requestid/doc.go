// Package requestid tags every inbound HTTP request with an identifier that
// is stored in the context, logged, and forwarded on outbound webhook calls.
package requestid
