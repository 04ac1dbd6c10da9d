// Package pipeline sequences the generate, translate, romanize and merge
// stages for every vocabulary kind. Each stage makes one completion call
// through the prompt builder, the sanitizer and the validator. A failing
// stage aborts the run with a StageError. Only the merge stage recovers
// locally, by dropping entries it cannot complete.
package pipeline
