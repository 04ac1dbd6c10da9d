package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/shabda/internal/pipeline"
	"codeberg.org/snonux/shabda/internal/session"
	"codeberg.org/snonux/shabda/internal/testutil"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "shabda" {
		t.Errorf("Expected Use to be 'shabda', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Odia") {
		t.Errorf("Expected Short description to mention Odia, got %q", cmd.Short)
	}

	for _, name := range []string{"config", "log-level", "user"} {
		t.Run("flag_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}
}

func TestSubcommands(t *testing.T) {
	cmd := CreateRootCommand(NewFlags())

	tests := []struct {
		name  string
		flags []string
	}{
		{"serve", nil},
		{"generate", []string{"type", "count"}},
		{"translate", []string{"batch"}},
		{"sessions", nil},
		{"export", []string{"format", "output", "deck-name", "notes", "notes-concurrency"}},
		{"list-models", nil},
		{"archive", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.name})
			if err != nil || sub.Name() != tt.name {
				t.Fatalf("subcommand %s not found", tt.name)
			}
			for _, f := range tt.flags {
				var flag *pflag.Flag
				flag = sub.Flags().Lookup(f)
				if flag == nil {
					t.Errorf("Expected flag %s on %s", f, tt.name)
				}
			}
		})
	}

	sessions, _, _ := cmd.Find([]string{"sessions"})
	var names []string
	for _, c := range sessions.Commands() {
		names = append(names, c.Name())
	}
	if got := strings.Join(names, ","); got != "clear,list,save,show" {
		t.Errorf("sessions subcommands = %s", got)
	}
}

func TestFlagDefaults(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	export, _, _ := cmd.Find([]string{"export"})
	if got := export.Flags().Lookup("format").DefValue; got != "apkg" {
		t.Errorf("format default = %s, want apkg", got)
	}
	if got := export.Flags().Lookup("deck-name").DefValue; got != "Shabda Odia" {
		t.Errorf("deck-name default = %s, want Shabda Odia", got)
	}

	generate, _, _ := cmd.Find([]string{"generate"})
	if got := generate.Flags().Lookup("type").Shorthand; got != "t" {
		t.Errorf("type shorthand = %s, want t", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	if err := cmd.PersistentFlags().Set("log-level", "debug"); err != nil {
		t.Fatal(err)
	}
	if got := viper.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
}

func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "")

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	testutil.CreateTestFile(t, cfgFile, []byte(`
models:
  word_generation: gpt-4o
storage:
  backend: file
  directory: `+dir+`
`))

	cfg, err := InitConfig(cfgFile)
	if err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}

	if cfg.Models.WordGeneration != "gpt-4o" {
		t.Errorf("word_generation = %s, want gpt-4o", cfg.Models.WordGeneration)
	}
	if cfg.Models.Translation != "gpt-4o-mini" {
		t.Errorf("translation = %s, want the default gpt-4o-mini", cfg.Models.Translation)
	}
	if cfg.LLM.OpenAIKey != "sk-test" {
		t.Errorf("openai key not taken from the environment")
	}
	if cfg.Storage.Directory != dir {
		t.Errorf("storage directory = %s, want %s", cfg.Storage.Directory, dir)
	}
}

func TestInitConfig_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if _, err := InitConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestArchiveCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	testutil.CreateTestFile(t, cfgFile, []byte("storage:\n  directory: "+dir+"\n"))
	testutil.CreateTestFile(t, filepath.Join(dir, "saved", "default_1.json"), []byte("{}"))

	cmd := CreateRootCommand(NewFlags())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgFile, "archive"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	testutil.AssertFileNotExists(t, filepath.Join(dir, "saved"))
	if !strings.Contains(out.String(), filepath.Join(dir, "archive", "saved-")) {
		t.Errorf("unexpected output: %s", out.String())
	}

	entries, err := os.ReadDir(filepath.Join(dir, "archive"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one archived directory, got %v (%v)", entries, err)
	}
	testutil.AssertFileExists(t, filepath.Join(dir, "archive", entries[0].Name(), "default_1.json"))
}

func TestTranslateInput(t *testing.T) {
	batchFile := filepath.Join(t.TempDir(), "words.txt")
	testutil.CreateTestFile(t, batchFile, []byte("# nouns\nwater\nbook = ବହି\n"))

	tests := []struct {
		name      string
		args      []string
		batchFile string
		want      []string
		wantErr   bool
	}{
		{"arguments", []string{"water", "book"}, "", []string{"water", "book"}, false},
		{"comma list", []string{"water, book,"}, "", []string{"water", "book"}, false},
		{"batch and arguments", []string{"Water", "tree"}, batchFile, []string{"water", "book", "tree"}, false},
		{"nothing", nil, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := translateInput(tt.args, tt.batchFile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("translateInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			var got []string
			for _, e := range entries {
				got = append(got, e.English)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("translateInput() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	entries := testutil.SampleEntries()
	var out bytes.Buffer

	printEntries(&out, entries)
	printResult(&out, &pipeline.Result{Entries: entries, Dropped: 2},
		&session.StorageInfo{Backend: "file", Location: "/tmp/default.json", Entries: 5})

	for _, want := range []string{"ENGLISH", "ପାଣି", "dhanyabaada", "3 new entries, 2 dropped", "session has 5 entries (file: /tmp/default.json)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
