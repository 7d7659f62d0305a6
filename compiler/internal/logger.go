package internal

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

const (
	LogLevelSilent = iota
	LogLevelError
	LogLevelWarning
	LogLevelVerbose
)

const (
	LogLevelSilentName  = "silent"
	LogLevelErrorName   = "error"
	LogLevelWarningName = "warn"
	LogLevelVerboseName = "verbose"
)

var LogLevelNames = []string{LogLevelSilentName, LogLevelErrorName, LogLevelWarningName, LogLevelVerboseName}

var logLevels = map[string]int{
	LogLevelSilentName:  LogLevelSilent,
	LogLevelErrorName:   LogLevelError,
	LogLevelWarningName: LogLevelWarning,
	LogLevelVerboseName: LogLevelVerbose,
}

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)
)

// PrintErrorMessage prints an error to the console regardless of any log level.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// Logger prints tagged, colored messages at or below its level.
type Logger struct {
	level int
	out   io.Writer
}

// NewLogger builds a logger for a level name; unknown names are an error.
func NewLogger(levelName string, out io.Writer) (*Logger, error) {
	level, ok := logLevels[levelName]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", levelName)
	}
	return &Logger{level: level, out: out}, nil
}

func (l *Logger) print(style *pterm.Style, color pterm.Color, tag, msg string) {
	fmt.Fprint(l.out, style.Sprint(tag))
	fmt.Fprintln(l.out, color.Sprint(" "+msg))
}

func (l *Logger) Error(tag string, err error) {
	if l.level >= LogLevelError {
		l.print(ErrorStyleBG, ErrorColorFG, tag, err.Error())
	}
}

func (l *Logger) Warn(tag, msg string) {
	if l.level >= LogLevelWarning {
		l.print(WarnStyleBG, WarnColorFG, tag, msg)
	}
}

// Phase reports the start of a pipeline phase.
func (l *Logger) Phase(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.print(InfoStyleBG, InfoColorFG, "djc", fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Success(tag, msg string) {
	if l.level >= LogLevelVerbose {
		l.print(SuccessStyleBG, SuccessColorFG, tag, msg)
	}
}
