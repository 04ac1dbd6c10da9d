package anki

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/shabda/internal/vocab"
)

// Card represents a single Anki flashcard
type Card struct {
	English   string // The English word/phrase
	Odia      string // The Odia word/phrase
	Romanized string // Latin transliteration of Odia
	AudioFile string // Path to audio file, optional
	Notes     string // Optional notes
}

// Fields lists the note fields in order
var Fields = []string{"English", "Odia", "Romanized", "Audio", "Notes"}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output file path
	IncludeHeaders bool   // Include CSV headers
	DeckName       string // Deck name for .apkg export
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
		DeckName:       "Shabda Odia",
	}
}

// NotesFetcher looks up study notes for one Odia item
type NotesFetcher interface {
	Fetch(ctx context.Context, odia string) (string, error)
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
	logger  *zap.Logger
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions, logger *zap.Logger) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
		logger:  logger.Named("anki"),
	}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddEntries adds one card per complete entry. audio maps Odia text to a
// local audio file and may be nil.
func (g *Generator) AddEntries(entries []vocab.Entry, audio map[string]string) int {
	added := 0
	for _, e := range entries {
		e = e.Trimmed()
		if !e.Has(vocab.AllFields) {
			continue
		}
		card := Card{English: e.English, Odia: e.Odia, Romanized: e.RomanizedOdia}
		if path, ok := audio[e.Odia]; ok && fileExists(path) {
			card.AudioFile = path
		}
		g.AddCard(card)
		added++
	}
	return added
}

// Cards returns the cards collected so far
func (g *Generator) Cards() []Card {
	return g.cards
}

// FetchNotes fills the Notes field of every card that has none. At most
// limit lookups run at once. A failed lookup leaves the card without
// notes; only context cancellation aborts.
func (g *Generator) FetchNotes(ctx context.Context, fetcher NotesFetcher, limit int) error {
	if limit <= 0 {
		limit = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i := range g.cards {
		if g.cards[i].Notes != "" {
			continue
		}
		card := &g.cards[i]
		eg.Go(func() error {
			notes, err := fetcher.Fetch(ctx, card.Odia)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.logger.Warn("failed to fetch notes", zap.String("odia", card.Odia), zap.Error(err))
				return nil
			}
			card.Notes = notes
			return nil
		})
	}

	return eg.Wait()
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	if dir := filepath.Dir(g.options.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		if err := writer.Write(Fields); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		record := []string{
			card.English,
			card.Odia,
			card.Romanized,
			formatAudioField(mediaName(card.AudioFile)),
			card.Notes,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

// GenerateAPKG creates a proper .apkg file for Anki import
func (g *Generator) GenerateAPKG() error {
	apkgGen := NewAPKGGenerator(g.options.DeckName)
	for _, card := range g.cards {
		apkgGen.AddCard(card)
	}
	return apkgGen.GenerateAPKG(g.options.OutputPath)
}

// Generate writes the export in the format given by the output extension
func (g *Generator) Generate() error {
	if len(g.cards) == 0 {
		return fmt.Errorf("no cards to export")
	}

	var err error
	if strings.EqualFold(filepath.Ext(g.options.OutputPath), ".apkg") {
		err = g.GenerateAPKG()
	} else {
		err = g.GenerateCSV()
	}
	if err != nil {
		return err
	}

	total, withAudio, withNotes := g.Stats()
	g.logger.Info("export written",
		zap.String("path", g.options.OutputPath),
		zap.Int("cards", total),
		zap.Int("with_audio", withAudio),
		zap.Int("with_notes", withNotes))
	return nil
}

// formatAudioField formats the audio file reference for Anki
func formatAudioField(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filename)
}

// mediaName is the name a media file is referenced by inside a deck
func mediaName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withAudio, withNotes int) {
	totalCards = len(g.cards)

	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
		if card.Notes != "" {
			withNotes++
		}
	}

	return
}
