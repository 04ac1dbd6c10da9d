package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/shabda/internal/anki"
	"codeberg.org/snonux/shabda/internal/archive"
	"codeberg.org/snonux/shabda/internal/batch"
	"codeberg.org/snonux/shabda/internal/models"
	"codeberg.org/snonux/shabda/internal/pipeline"
	"codeberg.org/snonux/shabda/internal/session"
	"codeberg.org/snonux/shabda/internal/vocab"
)

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := rt.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Serve(ctx)
		},
	}
}

func newGenerateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate new entries and add them to the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := vocab.ParseKind(rt.flags.Type)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := rt.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			existing, err := a.Sessions.Existing(ctx, rt.flags.User, kind)
			if err != nil {
				return err
			}

			res, err := a.Pipeline.Run(ctx, pipeline.Request{Kind: kind, Existing: existing, Count: rt.flags.Count})
			if err != nil {
				return err
			}

			info, err := a.Sessions.Append(ctx, rt.flags.User, res.Entries)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printEntries(out, res.Entries)
			printResult(out, res, info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rt.flags.Type, "type", "t", rt.flags.Type, "what to generate: words, phrases or english_phrases")
	cmd.Flags().IntVarP(&rt.flags.Count, "count", "n", 0, "number of items (default from config)")
	return cmd
}

func newTranslateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [words...]",
		Short: "Translate English words and add them to the session",
		Long: `Translate English words into Odia with romanization.

Words come from the arguments or from a batch file with one item per line.
Lines may list several items separated by commas or give a known
translation as "english = ଓଡ଼ିଆ". Lines starting with # are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := translateInput(args, rt.flags.BatchFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := rt.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				results []vocab.Entry
				last    *pipeline.Result
			)
			if pending := batch.Pending(entries); len(pending) > 0 {
				res, err := a.Pipeline.TranslateWords(ctx, pending)
				if err != nil {
					return err
				}
				results = append(results, res.Entries...)
				last = res
			}
			if known := batch.Known(entries); len(known) > 0 {
				res, err := a.Pipeline.Romanize(ctx, known)
				if err != nil {
					return err
				}
				results = append(results, res.Entries...)
				if last == nil {
					last = res
				} else {
					last.Dropped += res.Dropped
					last.Mismatches = append(last.Mismatches, res.Mismatches...)
				}
			}

			info, err := a.Sessions.Append(ctx, rt.flags.User, results)
			if err != nil {
				return err
			}

			last.Entries = results
			out := cmd.OutOrStdout()
			printEntries(out, results)
			printResult(out, last, info)
			return nil
		},
	}

	cmd.Flags().StringVar(&rt.flags.BatchFile, "batch", "", "read words from file (one per line)")
	return cmd
}

// translateInput merges the arguments and the batch file into one list
func translateInput(args []string, batchFile string) ([]batch.WordEntry, error) {
	var entries []batch.WordEntry
	if batchFile != "" {
		read, err := batch.ReadBatchFile(batchFile)
		if err != nil {
			return nil, err
		}
		entries = read
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[strings.ToLower(e.English)] = true
	}
	for _, arg := range args {
		for _, word := range strings.Split(arg, ",") {
			word = strings.TrimSpace(word)
			if word == "" || seen[strings.ToLower(word)] {
				continue
			}
			seen[strings.ToLower(word)] = true
			entries = append(entries, batch.WordEntry{English: word, NeedsTranslation: true})
		}
	}

	if len(entries) == 0 {
		return nil, errors.New("nothing to translate: pass words or --batch")
	}
	return entries, nil
}

func newSessionsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage sessions",
	}

	withApp := func(fn func(ctx context.Context, cmd *cobra.Command, m *session.Manager) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := rt.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, cmd, a.Sessions)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved sessions",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, cmd *cobra.Command, m *session.Manager) error {
				infos, err := m.Snapshots(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tUSER\tENTRIES\tCREATED")
				for _, info := range infos {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.Name, info.User, info.Entries, info.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the current session",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, cmd *cobra.Command, m *session.Manager) error {
				s, err := m.Get(ctx, rt.flags.User)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s (%s), %d entries, updated %s\n\n",
					s.ID, s.User, len(s.Entries), s.UpdatedAt.Format("2006-01-02 15:04"))
				printEntries(cmd.OutOrStdout(), s.Entries)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "save",
			Short: "Save a permanent copy of the current session",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, cmd *cobra.Command, m *session.Manager) error {
				info, err := m.Snapshot(ctx, rt.flags.User)
				if errors.Is(err, session.ErrNotFound) {
					return errors.New("no active session to save")
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d entries to %s\n", info.Entries, info.Location)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "End the current session",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, cmd *cobra.Command, m *session.Manager) error {
				if err := m.Clear(ctx, rt.flags.User); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
				return nil
			}),
		},
	)

	return cmd
}

func newExportCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current session to Anki",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(rt.flags.Format)
			if format != "apkg" && format != "csv" {
				return fmt.Errorf("unknown export format: %s", rt.flags.Format)
			}
			output := rt.flags.OutputPath
			if output == "" {
				output = "shabda." + format
			}
			if filepath.Ext(output) != "."+format {
				output += "." + format
			}

			ctx := cmd.Context()
			a, err := rt.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Sessions.Get(ctx, rt.flags.User)
			if err != nil {
				return err
			}

			// audio URLs point into the speaker directory
			media := make(map[string]string, len(s.AudioURLs))
			for text, url := range s.AudioURLs {
				if p, err := a.Speaker.Path(path.Base(url)); err == nil {
					media[text] = p
				}
			}

			gen := anki.NewGenerator(&anki.GeneratorOptions{
				OutputPath:     output,
				IncludeHeaders: true,
				DeckName:       rt.flags.DeckName,
			}, a.Logger)
			if gen.AddEntries(s.Entries, media) == 0 {
				return errors.New("the session has no complete entries to export")
			}

			if rt.flags.Notes {
				if err := gen.FetchNotes(ctx, a.Phonetic, rt.flags.NotesConcurrency); err != nil {
					return err
				}
			}

			if err := gen.Generate(); err != nil {
				return err
			}

			total, withAudio, withNotes := gen.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards (%d with audio, %d with notes) to %s\n",
				total, withAudio, withNotes, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rt.flags.Format, "format", "f", rt.flags.Format, "export format: apkg or csv")
	cmd.Flags().StringVarP(&rt.flags.OutputPath, "output", "o", "", "output file (default shabda.<format>)")
	cmd.Flags().StringVar(&rt.flags.DeckName, "deck-name", rt.flags.DeckName, "deck name for APKG export")
	cmd.Flags().BoolVar(&rt.flags.Notes, "notes", false, "fetch pronunciation notes for every card")
	cmd.Flags().IntVar(&rt.flags.NotesConcurrency, "notes-concurrency", rt.flags.NotesConcurrency, "parallel note lookups")
	return cmd
}

func newListModelsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List available OpenAI models and check the configured ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.config
			catalog, err := models.NewLister(cfg.LLM.OpenAIKey, cfg.LLM.BaseURL).List(cmd.Context())
			if err != nil {
				return err
			}

			configured := cfg.Models.Map()
			if cfg.Speech.Provider == "openai" {
				configured["speech"] = cfg.Speech.Model
				if cfg.Speech.FallbackModel != "" {
					configured["speech_fallback"] = cfg.Speech.FallbackModel
				}
			}

			catalog.Print(cmd.OutOrStdout(), catalog.Check(configured))
			return nil
		},
	}
}

func newArchiveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move saved sessions into the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage := rt.config.Storage

			var (
				dst string
				err error
			)
			switch storage.Backend {
			case "sqlite":
				dst, err = archive.Snapshot(storage.SQLitePath, filepath.Join(filepath.Dir(storage.SQLitePath), "archive"), "shabda")
			default:
				dst, err = archive.Move(filepath.Join(storage.Directory, "saved"), "saved")
			}
			if err != nil {
				return fmt.Errorf("failed to archive sessions: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived to %s\n", dst)
			return nil
		},
	}
}

func printEntries(out io.Writer, entries []vocab.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENGLISH\tODIA\tROMANIZED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.English, e.Odia, e.RomanizedOdia)
	}
	w.Flush()
}

func printResult(out io.Writer, res *pipeline.Result, info *session.StorageInfo) {
	fmt.Fprintf(out, "\n%d new entries", len(res.Entries))
	if res.Dropped > 0 {
		fmt.Fprintf(out, ", %d dropped", res.Dropped)
	}
	fmt.Fprintf(out, "; session has %d entries (%s: %s)\n", info.Entries, info.Backend, info.Location)
	for _, m := range res.Mismatches {
		fmt.Fprintf(out, "warning: %v\n", m)
	}
}
