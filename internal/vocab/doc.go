// Package vocab holds the vocabulary types shared by the generation
// pipeline, the session store and the exporters: entries, raw model
// records and the tagged results decoded from model output.
package vocab
