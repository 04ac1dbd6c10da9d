// Package session keeps the vocabulary a user has accumulated. A Manager
// owns one explicit session per user and persists it through a Store.
// FileStore writes JSON files; SQLStore keeps everything in SQLite.
package session
