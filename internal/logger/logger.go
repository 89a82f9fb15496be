package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// LogType tags an entry for the output router.
type LogType string

const (
	UserLog LogType = "user"
	OpLog   LogType = "op"
)

var (
	User *UserLogger // Clean messages for users (stdout) with emojis
	Op   *OpLogger   // Detailed operational logs (stderr) without emojis

	// base is the single logrus logger behind User and Op.
	base = newBase()

	userWriter io.Writer = os.Stdout
	opWriter   io.Writer = os.Stderr
)

// init ensures loggers are never nil
func init() {
	User = &UserLogger{logger: base}
	Op = &OpLogger{logger: base}
}

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&CLIFormatter{DisableTimestamp: true, DisableLevel: true})
	return l
}

// Base returns the logrus logger shared by User and Op.
func Base() *logrus.Logger {
	return base
}

type UserLogger struct {
	logger *logrus.Logger
}

type OpLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) withEmoji(emoji string) *logrus.Entry {
	return u.logger.WithFields(logrus.Fields{
		"log_type": string(UserLog),
		"emoji":    emoji,
	})
}

// UserLogger methods with emojis built-in
func (u *UserLogger) Info(msg string) {
	u.logger.WithField("log_type", string(UserLog)).Info(msg)
}

func (u *UserLogger) Infof(format string, args ...interface{}) {
	u.logger.WithField("log_type", string(UserLog)).Infof(format, args...)
}

func (u *UserLogger) Error(msg string) {
	u.withEmoji("❌").Error(msg)
}

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.withEmoji("❌").Errorf(format, args...)
}

func (u *UserLogger) Warn(msg string) {
	u.withEmoji("⚠️").Warn(msg)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.withEmoji("⚠️").Warnf(format, args...)
}

// Task operation methods with relevant emojis
func (u *UserLogger) Starting(msg string) {
	u.withEmoji("🚀").Info(msg)
}

func (u *UserLogger) Success(msg string) {
	u.withEmoji("✅").Info(msg)
}

func (u *UserLogger) Createf(format string, args ...interface{}) {
	u.withEmoji("📝").Infof(format, args...)
}

func (u *UserLogger) Updatef(format string, args ...interface{}) {
	u.withEmoji("✏️").Infof(format, args...)
}

func (u *UserLogger) Deletef(format string, args ...interface{}) {
	u.withEmoji("🗑️").Infof(format, args...)
}

// OpLogger methods without emojis - clean operational logs
func (o *OpLogger) Info(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Info(msg)
}

func (o *OpLogger) Infof(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Infof(format, args...)
}

func (o *OpLogger) Error(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Error(msg)
}

func (o *OpLogger) Errorf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Errorf(format, args...)
}

func (o *OpLogger) Warn(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Warn(msg)
}

func (o *OpLogger) Warnf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Warnf(format, args...)
}

func (o *OpLogger) Debug(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Debug(msg)
}

func (o *OpLogger) Debugf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Debugf(format, args...)
}

func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["log_type"] = string(OpLog)
	return o.logger.WithFields(fields)
}

// CLIFormatter provides clean output for CLI applications
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	// User-facing lines are just the message
	if f.DisableLevel && f.DisableTimestamp {
		b.WriteString(entry.Message)
		b.WriteByte('\n')
		return b.Bytes(), nil
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	if !f.DisableLevel {
		levelColor := ""
		resetColor := ""
		if !f.DisableColors {
			switch entry.Level {
			case logrus.ErrorLevel:
				levelColor = "\033[31m" // Red
			case logrus.WarnLevel:
				levelColor = "\033[33m" // Yellow
			case logrus.InfoLevel:
				levelColor = "\033[36m" // Cyan
			case logrus.DebugLevel:
				levelColor = "\033[37m" // White
			}
			resetColor = "\033[0m"
		}

		b.WriteString(levelColor)
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString(resetColor)
		b.WriteString(": ")
	}

	b.WriteString(entry.Message)

	// Fields in stable order, internal routing fields skipped
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "log_type" || k == "emoji" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// SetWriters redirects user and operational output. Takes effect on the next Setup.
func SetWriters(user, op io.Writer) {
	userWriter = user
	opWriter = op
}

// Setup configures levels and output format. LOG_MODE (quiet, verbose,
// debug) and LOG_FORMAT (json, text) override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	verbose, jsonLogs, quiet = applyEnv(verbose, jsonLogs, quiet)

	level := logrus.InfoLevel
	switch {
	case quiet:
		level = logrus.ErrorLevel
	case verbose:
		level = logrus.DebugLevel
	}

	var router *OutputRouterHook
	if jsonLogs {
		router = NewOutputRouterHook(userWriter, opWriter, &logrus.JSONFormatter{}, &logrus.JSONFormatter{})
	} else {
		router = NewOutputRouterHook(userWriter, opWriter,
			&CLIFormatter{DisableTimestamp: true, DisableLevel: true},
			opFormatter(verbose))
	}

	// Output is written by the router only
	base.ReplaceHooks(logrus.LevelHooks{})
	base.SetOutput(io.Discard)
	base.SetLevel(level)
	base.AddHook(router)
}

func applyEnv(verbose, jsonLogs, quiet bool) (bool, bool, bool) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		verbose, quiet = true, false
	}

	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}
	return verbose, jsonLogs, quiet
}

func opFormatter(verbose bool) logrus.Formatter {
	if verbose {
		return &logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   isTerminal(opWriter),
		}
	}
	return &CLIFormatter{
		DisableTimestamp: true,
		DisableColors:    !isTerminal(opWriter),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
