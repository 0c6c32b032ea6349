// Package model declares the abstracted language-model boundary: a
// request/response capability that accepts a conversation history plus
// optional tool schemas and returns text and/or tool call intents. Vendor
// adapters live in the openai and anthropic subpackages; MockModel serves
// tests and offline demos.
package model
