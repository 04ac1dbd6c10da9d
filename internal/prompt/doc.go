// Package prompt builds the role-tagged message lists sent to the chat
// model for each generation, translation and romanization task. Every
// builder is a pure function of its inputs.
package prompt
