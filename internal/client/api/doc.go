// Package api is the client's request pipeline: it turns a Target into an
// HTTP exchange, classifies the outcome, transparently refreshes expired
// credentials once per call and retries transient failures under a bounded
// RetryPolicy.
package api
