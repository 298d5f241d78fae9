package logger

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type gocronLogger struct {
	l *zap.SugaredLogger
}

// NewGocronLogger adapts zap to the gocron.Logger contract.
func NewGocronLogger(l *zap.Logger) gocron.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &gocronLogger{l: l.Named("scheduler").Sugar()}
}

func (g *gocronLogger) Debug(msg string, args ...any) { g.l.Debugw(msg, args...) }
func (g *gocronLogger) Info(msg string, args ...any)  { g.l.Infow(msg, args...) }
func (g *gocronLogger) Warn(msg string, args ...any)  { g.l.Warnw(msg, args...) }
func (g *gocronLogger) Error(msg string, args ...any) { g.l.Errorw(msg, args...) }
