// Package llm provides chat-completion clients for the assistant's text generation.
// It supports OpenAI, Anthropic and Mistral, with rate limiting, retry logic and
// best-effort decoding of structured data from free-text replies.
package llm
