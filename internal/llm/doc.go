// Package llm provides the completion clients used by the pipeline.
// OpenAIClient and GeminiClient talk to the providers; Guard wraps any
// Completer with a rate limit, a circuit breaker and a per-call timeout.
// Clients never retry. Every failure is reported as an UpstreamError.
package llm
