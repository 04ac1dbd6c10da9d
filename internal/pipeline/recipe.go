package pipeline

import (
	"codeberg.org/snonux/shabda/internal/prompt"
	"codeberg.org/snonux/shabda/internal/sanitize"
	"codeberg.org/snonux/shabda/internal/validate"
	"codeberg.org/snonux/shabda/internal/vocab"
)

// recipe configures the shared engine for one kind
type recipe struct {
	source       prompt.Task
	sourceShape  vocab.Shape
	sourceField  vocab.Field
	filterSource func(items []string) ([]string, error)
	count        func(cfg Config) int

	translate  prompt.Task
	translated vocab.Field // fields the translation must supply
}

func englishSource(items []string) ([]string, error) {
	return validate.Text(sanitize.EnglishAll(items))
}

func odiaSource(items []string) ([]string, error) {
	return validate.Script(items, validate.OdiaBlock)
}

func wordCount(cfg Config) int   { return cfg.WordCount }
func phraseCount(cfg Config) int { return cfg.PhraseCount }

var recipes = map[vocab.Kind]recipe{
	vocab.KindWords: {
		source:       prompt.TaskWordGeneration,
		sourceShape:  vocab.ShapeWords,
		sourceField:  vocab.FieldEnglish,
		filterSource: englishSource,
		count:        wordCount,
		translate:    prompt.TaskOdiaTranslation,
		translated:   vocab.FieldOdia,
	},
	vocab.KindEnglishPhrases: {
		source:       prompt.TaskPhraseGeneration,
		sourceShape:  vocab.ShapePhrases,
		sourceField:  vocab.FieldEnglish,
		filterSource: englishSource,
		count:        phraseCount,
		translate:    prompt.TaskPhraseTranslation,
		translated:   vocab.FieldOdia,
	},
	vocab.KindPhrases: {
		source:       prompt.TaskOdiaPhraseGeneration,
		sourceShape:  vocab.ShapePhrases,
		sourceField:  vocab.FieldOdia,
		filterSource: odiaSource,
		count:        phraseCount,
		translate:    prompt.TaskEnglishTranslation,
		translated:   vocab.FieldEnglish,
	},
}
