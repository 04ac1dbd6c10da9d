package prompt

import (
	"fmt"
	"strings"
)

const jsonOnly = `Respond with ONLY the JSON array. Do not wrap it in an object, do not use markdown code fences and do not add any explanation.`

var templates = map[Task]template{
	TaskWordGeneration: {
		system: `You are a language learning assistant generating everyday English words for learners of Odia.
You must respond with ONLY a JSON array of strings.
Example of the EXACT format required:
["eat", "book", "water", "house", "walk"]
` + jsonOnly,
		defaultCount: 5,
		user: func(req Request) string {
			return fmt.Sprintf(`Return ONLY a JSON array of %d simple, common English words.
Each word must be lowercase ASCII without punctuation.%s`, req.Count, exclusion(req.Existing))
		},
	},

	TaskPhraseGeneration: {
		system: `You are a language learning assistant generating short everyday English phrases for learners of Odia.
You must respond with ONLY a JSON array of strings.
Example of the EXACT format required:
["good morning", "how are you", "thank you very much"]
Phrases must not contain quotes, question marks, exclamation marks or full stops.
` + jsonOnly,
		defaultCount: 10,
		user: func(req Request) string {
			return fmt.Sprintf(`Return ONLY a JSON array of %d short English phrases of two to five words that are useful in daily conversation.%s`,
				req.Count, exclusion(req.Existing))
		},
	},

	TaskOdiaPhraseGeneration: {
		system: `You are a native Odia speaker helping English speakers learn Odia.
You must respond with ONLY a JSON array of strings written in Odia script (Unicode block U+0B00 to U+0B7F).
Never use Latin letters or transliteration.
Example of the EXACT format required:
["ଧନ୍ୟବାଦ", "ନମସ୍କାର", "ଆପଣ କେମିତି ଅଛନ୍ତି"]
` + jsonOnly,
		defaultCount: 10,
		user: func(req Request) string {
			return fmt.Sprintf(`Return ONLY a JSON array of %d short, common Odia phrases used in everyday conversation.%s`,
				req.Count, exclusion(req.Existing))
		},
	},

	TaskOdiaTranslation: {
		system: `You are an English to Odia translator. Return a single-line JSON array.
Each array item must be exactly in this format, with no extra whitespace or formatting:
{"english":"word","odia":"ଶବ୍ଦ","romanized_odia":"sabda"}
Example complete response:
[{"english":"water","odia":"ପାଣି","romanized_odia":"paani"},{"english":"book","odia":"ବହି","romanized_odia":"bahi"}]
` + jsonOnly,
		needsItems: true,
		user: func(req Request) string {
			return fmt.Sprintf(`Translate these English words to Odia, keeping their order, one array item per word: %s
Format: [{"english":"word","odia":"ଶବ୍ଦ","romanized_odia":"sabda"}]`, strings.Join(req.Items, ", "))
		},
	},

	TaskPhraseTranslation: {
		system: `You are an English to Odia translator for short phrases. Return a single-line JSON array.
Each array item must be exactly in this format:
{"english":"phrase","odia":"ବାକ୍ୟାଂଶ","romanized_odia":"bakyansa"}
The odia value must be written in Odia script. The romanized_odia value must use plain ASCII letters.
` + jsonOnly,
		needsItems: true,
		user: func(req Request) string {
			return fmt.Sprintf("Translate each of these English phrases to Odia, keeping the same order:\n%s", numbered(req.Items))
		},
	},

	TaskEnglishTranslation: {
		system: `You are an Odia to English translator. Return a JSON array with exactly one item per input phrase, in the same order.
Each array item must be exactly in this format:
{"odia":"ଧନ୍ୟବାଦ","english":"thank you"}
` + jsonOnly,
		needsItems: true,
		user: func(req Request) string {
			return fmt.Sprintf("Translate each of these Odia phrases to natural English, keeping the same order:\n%s", numbered(req.Items))
		},
	},

	TaskRomanization: {
		system: `You romanize Odia text for English-speaking learners. Return a JSON array with exactly one item per input, in the same order.
Each array item must be exactly in this format:
{"odia":"ନମସ୍କାର","romanized":"namaskara"}
Romanized text must use plain lowercase ASCII letters and spaces only.
` + jsonOnly,
		needsItems: true,
		user: func(req Request) string {
			return fmt.Sprintf("Romanize each of these Odia items, keeping the same order:\n%s", numbered(req.Items))
		},
	},

	TaskPronunciation: {
		system: `You are an Odia language teacher helping English speakers with pronunciation.
Explain pronunciation with familiar English sounds. Keep the answer under 80 words and use plain text only.`,
		needsItems: true,
		user: func(req Request) string {
			return fmt.Sprintf(`For the Odia text '%s':
1. Give a simple syllable-by-syllable pronunciation using English sounds
2. Mark the stressed syllable
3. Point out any sound that has no English equivalent`, req.Items[0])
		},
	},
}
