package logger

/*
	log := logger.NewLogger("squadbot", 2) (0 = default, 1 = debug, 2 = trace)
	log.Trace("Something very low level.")
	log.Debug("Useful debugging information.")
	log.Info("Something noteworthy happened!")
	log.Warn("You should probably take a look at this.")
	log.Error("Something failed but I'm not quitting.")
	// Calls os.Exit(1) after logging
	log.Fatal("Bye.")

	voiceLog := log.Child("voice") //Shares the output and level, prints [voice]
*/

import (
	"io"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

type Logger struct {
	Verbosity int //Exposed so services can match their own logging to ours

	logger *logrus.Logger
	prefix string
}

//NewLogger returns a logger with the specified verbosity level.
// prefix: string: the prefix for the logger
// verbosity: int: declares the verbosity level
//  - 0: default logging (info, warning, error)
//  - 1: includes 0, plus debug logging
//  - 2: includes 1, plus trace logging
func NewLogger(prefix string, verbosity int) *Logger {
	formatter := new(prefixed.TextFormatter)
	formatter.FullTimestamp = true

	log := logrus.New()
	log.Formatter = formatter

	switch {
	case verbosity >= 2:
		verbosity = 2
		log.Level = logrus.TraceLevel
	case verbosity == 1:
		log.Level = logrus.DebugLevel
	default:
		verbosity = 0
		log.Level = logrus.InfoLevel
	}

	return &Logger{
		Verbosity: verbosity,
		logger:    log,
		prefix:    prefix,
	}
}

//Child returns a logger sharing this logger's output and level under a new prefix
func (logger *Logger) Child(prefix string) *Logger {
	return &Logger{
		Verbosity: logger.Verbosity,
		logger:    logger.logger,
		prefix:    prefix,
	}
}

//SetOutput redirects everything written by this logger and its children
func (logger *Logger) SetOutput(out io.Writer) {
	logger.logger.SetOutput(out)
}

func (logger *Logger) Prefix() string {
	return logger.prefix
}

func (logger *Logger) Trace(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Trace(args...)
}
func (logger *Logger) Debug(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Debug(args...)
}
func (logger *Logger) Info(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Info(args...)
}
func (logger *Logger) Warn(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Warn(args...)
}
func (logger *Logger) Error(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Error(args...)
}
func (logger *Logger) Fatal(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Fatal(args...)
}
func (logger *Logger) Panic(args ...interface{}) {
	logger.logger.WithField("prefix", logger.prefix).Panic(args...)
}

//Cron returns an adapter for cron's logger, so recovered job panics land in our log
func (logger *Logger) Cron() cron.Logger {
	return cronLogger{logger}
}

type cronLogger struct {
	logger *Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.logger.Trace(append([]interface{}{"cron: ", msg, " "}, keysAndValues...)...)
}
func (cl cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.logger.Error(append([]interface{}{"cron: ", msg, ": ", err, " "}, keysAndValues...)...)
}
