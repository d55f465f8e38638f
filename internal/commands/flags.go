package commands

// Flags are the global options shared by every command.
type Flags struct {
	LogLevel   string
	ConfigPath string
	Locale     string
}
