package app

// Key binding constants used in handleKey.
const (
	KeyQuit        = "q"
	KeyCtrlC       = "ctrl+c"
	KeyEnter       = "enter"
	KeyEsc         = "esc"
	KeyOpenFile    = "o"
	KeyTranscribe  = "t"
	KeyAnalyze     = "a"
	KeySettings    = "s"
	KeyNextModel   = "m"
	KeyPrevModel   = "M"
	KeyEditPrompt  = "p"
	KeyChangeCreds = "x"
)
