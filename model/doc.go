// Package model contains gateway implementations of core.Gateway. The root
// package offers Mock, a scripted gateway for tests and examples; provider
// adapters live in the openai, anthropic and gemini subpackages.
package model
