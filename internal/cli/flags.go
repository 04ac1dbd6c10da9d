package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	LogLevel string
	User     string

	// generate flags
	Type  string
	Count int

	// translate flags
	BatchFile string

	// export flags
	Format           string
	OutputPath       string
	DeckName         string
	Notes            bool
	NotesConcurrency int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Type:             "words",
		Format:           "apkg",
		DeckName:         "Shabda Odia",
		NotesConcurrency: 4,
	}
}
