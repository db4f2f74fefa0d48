// Package batch executes ordered sequences of requests in a single
// round trip. Steps run synchronously on the dispatching goroutine and
// may reference prior step results with $N tokens, where N is the index
// of an earlier step: "$0" inserts step 0's entire response body, and
// "$0.node.id" walks object fields below it. Unresolvable references
// are left as the literal string the client sent.
package batch
