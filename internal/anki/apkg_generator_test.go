package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestNewAPKGGenerator(t *testing.T) {
	gen := NewAPKGGenerator("Test Deck")

	if gen.deckName != "Test Deck" {
		t.Errorf("Expected deck name 'Test Deck', got '%s'", gen.deckName)
	}
	if len(gen.cards) != 0 || len(gen.media) != 0 {
		t.Error("Expected an empty generator")
	}
	if gen.modelID == gen.deckID {
		t.Error("Deck and model ids must differ")
	}
}

func TestAPKGAddCardRegistersMediaOnce(t *testing.T) {
	dir := t.TempDir()
	audioFile := filepath.Join(dir, "paani.mp3")
	os.WriteFile(audioFile, []byte("audio data"), 0644)

	gen := NewAPKGGenerator("Test Deck")
	gen.AddCard(Card{English: "water", Odia: "ପାଣି", AudioFile: audioFile})
	gen.AddCard(Card{English: "water", Odia: "ପାଣି", AudioFile: audioFile})
	gen.AddCard(Card{English: "book", Odia: "ବହି", AudioFile: filepath.Join(dir, "missing.mp3")})

	if len(gen.cards) != 3 {
		t.Errorf("Expected 3 cards, got %d", len(gen.cards))
	}
	if len(gen.media) != 1 || gen.mediaIdx["paani.mp3"] != 0 {
		t.Errorf("Expected one media file, got %v", gen.mediaIdx)
	}
}

func TestGenerateAPKG(t *testing.T) {
	dir := t.TempDir()
	audioFile := filepath.Join(dir, "paani.mp3")
	os.WriteFile(audioFile, []byte("audio data"), 0644)

	gen := NewAPKGGenerator("Odia Test")
	gen.AddCard(Card{English: "water", Odia: "ପାଣି", Romanized: "paani", AudioFile: audioFile, Notes: "line one\nline two"})
	gen.AddCard(Card{English: "book", Odia: "ବହି", Romanized: "bahi"})

	outputPath := filepath.Join(dir, "out", "test.apkg")
	if err := gen.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open apkg: %v", err)
	}
	defer reader.Close()

	files := map[string]*zip.File{}
	for _, f := range reader.File {
		files[f.Name] = f
	}
	for _, name := range []string{"collection.anki2", "media", "0"} {
		if files[name] == nil {
			t.Fatalf("Expected %s in package, got %v", name, files)
		}
	}

	var mapping map[string]string
	rc, _ := files["media"].Open()
	if err := json.NewDecoder(rc).Decode(&mapping); err != nil {
		t.Fatalf("Failed to decode media map: %v", err)
	}
	rc.Close()
	if mapping["0"] != "paani.mp3" {
		t.Errorf("Unexpected media mapping: %v", mapping)
	}

	// extract the collection to inspect it
	dbPath := filepath.Join(dir, "collection.anki2")
	rc, _ = files["collection.anki2"].Open()
	out, _ := os.Create(dbPath)
	io.Copy(out, rc)
	out.Close()
	rc.Close()

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open collection: %v", err)
	}
	defer db.Close()

	var notes, cards int
	db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes)
	db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards)
	if notes != 2 || cards != 4 {
		t.Errorf("Expected 2 notes and 4 cards, got %d and %d", notes, cards)
	}

	var flds string
	if err := db.QueryRow("SELECT flds FROM notes WHERE sfld = ?", "water").Scan(&flds); err != nil {
		t.Fatalf("Failed to read note: %v", err)
	}
	fields := strings.Split(flds, "\x1f")
	if len(fields) != len(Fields) {
		t.Fatalf("Expected %d fields, got %d", len(Fields), len(fields))
	}
	if fields[1] != "ପାଣି" || fields[3] != "[sound:paani.mp3]" || fields[4] != "line one<br>line two" {
		t.Errorf("Unexpected fields: %q", fields)
	}

	var models string
	db.QueryRow("SELECT models FROM col").Scan(&models)
	if !strings.Contains(models, "Odia to English") {
		t.Error("Expected reverse template in note type")
	}
}

func TestNoteGUIDIsStable(t *testing.T) {
	dir := t.TempDir()
	guids := make([]string, 2)

	for i := range guids {
		gen := NewAPKGGenerator("Deck")
		gen.AddCard(Card{English: "water", Odia: "ପାଣି", Romanized: "paani"})

		dbPath := filepath.Join(dir, "c"+string(rune('0'+i))+".anki2")
		if err := gen.createDatabase(dbPath); err != nil {
			t.Fatalf("createDatabase() error = %v", err)
		}

		db, _ := sql.Open("sqlite3", dbPath)
		db.QueryRow("SELECT guid FROM notes").Scan(&guids[i])
		db.Close()
	}

	if guids[0] == "" || guids[0] != guids[1] {
		t.Errorf("Expected stable guids, got %q", guids)
	}
}
