package tui

const (
	KeyQuit      = "q"
	KeyEsc       = "esc"
	KeyCtrlC     = "ctrl+c"
	KeyEnter     = "enter"
	KeySpace     = " "
	KeyLeft      = "left"
	KeyBackspace = "backspace"
	KeyH         = "h"
)
