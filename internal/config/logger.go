package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger はJSON形式のlogrusロガーを返す。LOG_LEVELが不正ならinfo。
func NewLogger(c Config) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// DiscardLogger はテスト用（何も出さない）
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
