package vocab

import (
	"encoding/json"
	"fmt"
)

// GenerationResult is the decoded shape of one model response. It is one
// of WordList, PhraseList or TranslationList.
type GenerationResult interface {
	Len() int
	generationResult()
}

// WordList holds generated single words
type WordList []string

// PhraseList holds generated phrases, English or Odia
type PhraseList []string

// TranslationList holds structured records. Positions are preserved:
// an element that is not an object decodes to a zero Record so that
// index i still lines up with the request's item i.
type TranslationList []Record

func (l WordList) Len() int        { return len(l) }
func (l PhraseList) Len() int      { return len(l) }
func (l TranslationList) Len() int { return len(l) }

func (WordList) generationResult()        {}
func (PhraseList) generationResult()      {}
func (TranslationList) generationResult() {}

// Shape names the result variant a prompt asks for
type Shape int

const (
	ShapeWords Shape = iota
	ShapePhrases
	ShapeTranslations
)

func (s Shape) String() string {
	switch s {
	case ShapeWords:
		return "word list"
	case ShapePhrases:
		return "phrase list"
	case ShapeTranslations:
		return "translation list"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Decode parses a JSON array into the requested variant. String lists
// drop non-string elements; record lists keep their positions.
func Decode(shape Shape, data []byte) (GenerationResult, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", shape, err)
	}

	switch shape {
	case ShapeWords, ShapePhrases:
		items := make([]string, 0, len(elems))
		for _, raw := range elems {
			var s *string
			if err := json.Unmarshal(raw, &s); err != nil || s == nil {
				continue
			}
			items = append(items, *s)
		}
		if shape == ShapeWords {
			return WordList(items), nil
		}
		return PhraseList(items), nil

	case ShapeTranslations:
		records := make(TranslationList, len(elems))
		for i, raw := range elems {
			var r Record
			if err := json.Unmarshal(raw, &r); err != nil {
				continue
			}
			records[i] = r
		}
		return records, nil
	}

	return nil, fmt.Errorf("unknown result shape: %s", shape)
}
