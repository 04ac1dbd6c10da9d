// Package archive makes timestamped copies of session files and moves
// whole data directories out of the way.
package archive
