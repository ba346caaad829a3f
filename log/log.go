package log

import (
	"context"
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/wallet-backend/wallet-backend/core"
)

type WBLogLevel int

const (
	WBLogLevelPanic WBLogLevel = iota // Programming error, application must stop to prevent wrong output
	WBLogLevelFatal                   // Wrong configuration or input that prevents the application from running
	WBLogLevelError                   // Programming error, but the application keeps serving other inputs
	WBLogLevelWarn                    // Error because of the input, the application continues
	WBLogLevelInfo
	WBLogLevelDebug
	WBLogLevelTrace
)

var WBLogLevelAsString = map[WBLogLevel]string{
	WBLogLevelTrace: "TRACE",
	WBLogLevelDebug: "DEBUG",
	WBLogLevelInfo:  "INFO",
	WBLogLevelWarn:  "WARN",
	WBLogLevelError: "ERROR",
	WBLogLevelFatal: "FATAL",
	WBLogLevelPanic: "PANIC",
}

type WBLogFormat int

const (
	WBLogFormatText WBLogFormat = iota
	WBLogFormatJSON             = 1
)

type WBLog struct {
	Context context.Context
	Prefix  string
}

var Format WBLogFormat

func NewLog(parentLog *WBLog, context context.Context, prefix string) WBLog {
	if parentLog != nil {
		if parentLog.Prefix != "" {
			prefix = parentLog.Prefix + " | " + prefix
		}
	}
	l := WBLog{Context: context, Prefix: prefix}
	return l
}

func (l *WBLog) LogText(severity WBLogLevel, location string, text string) {
	stack := ``
	a := log.WithFields(log.Fields{"prefix": l.Prefix, "location": location})
	switch severity {
	case WBLogLevelTrace:
		a.Tracef("%s", text)
	case WBLogLevelDebug:
		a.Debugf("%s", text)
	case WBLogLevelInfo:
		a.Infof("%s", text)
	case WBLogLevelWarn:
		a.Warnf("%s", text)
	case WBLogLevelError:
		a.Errorf("%s", text)
	case WBLogLevelFatal:
		a.Fatalf("Terminating... %s", text)
	case WBLogLevelPanic:
		stack = string(debug.Stack())
		a = a.WithField(`stack`, stack)
		a.Fatalf("%s", text)
	default:
		a.Printf("%s", text)
	}
}

func (l *WBLog) Trace(text string) {
	l.LogText(WBLogLevelTrace, ``, text)
}

func (l *WBLog) Tracef(text string, v ...any) {
	l.Trace(fmt.Sprintf(text, v...))
}

func (l *WBLog) Debug(text string) {
	l.LogText(WBLogLevelDebug, ``, text)
}

func (l *WBLog) Debugf(text string, v ...any) {
	l.Debug(fmt.Sprintf(text, v...))
}

func (l *WBLog) Info(text string) {
	l.LogText(WBLogLevelInfo, ``, text)
}

func (l *WBLog) Infof(text string, v ...any) {
	l.Info(fmt.Sprintf(text, v...))
}

func (l *WBLog) Warn(text string) {
	l.LogText(WBLogLevelWarn, ``, text)
}

func (l *WBLog) Warnf(text string, v ...any) {
	l.Warn(fmt.Sprintf(text, v...))
}

func (l *WBLog) WarnAndCreateErrorf(text string, v ...any) (err error) {
	err = fmt.Errorf(text, v...)
	l.LogText(WBLogLevelWarn, ``, err.Error())
	return err
}

func (l *WBLog) Error(text string) {
	l.LogText(WBLogLevelError, ``, text)
}

func (l *WBLog) Errorf(text string, v ...any) {
	l.Error(fmt.Sprintf(text, v...))
}

func (l *WBLog) ErrorAndCreateErrorf(text string, v ...any) (err error) {
	err = fmt.Errorf(text, v...)
	l.Error(err.Error())
	return err
}

func (l *WBLog) Fatal(text string) {
	l.LogText(WBLogLevelFatal, ``, text)
}

func (l *WBLog) Fatalf(text string, v ...any) {
	l.Fatal(fmt.Sprintf(text, v...))
}

func (l *WBLog) FatalAndCreateErrorf(text string, v ...any) (err error) {
	err = fmt.Errorf(text, v...)
	l.Fatal(err.Error())
	return err
}

func (l *WBLog) Panic(location string, err error) {
	l.LogText(WBLogLevelPanic, location, err.Error())
}

func (l *WBLog) PanicAndCreateErrorf(location, text string, v ...any) (err error) {
	err = fmt.Errorf(text, v...)
	l.Panic(location, err)
	return err
}

var Log WBLog

func SetFormatJSON() {
	log.SetFormatter(&log.JSONFormatter{})
	Format = WBLogFormatJSON
}

func SetFormatText() {
	log.SetFormatter(&log.TextFormatter{})
	Format = WBLogFormatText
}

func init() {
	log.SetLevel(log.TraceLevel)
	SetFormatJSON()
	Log = NewLog(nil, core.RootContext, "")
}
