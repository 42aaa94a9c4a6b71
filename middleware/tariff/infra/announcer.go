package infra

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"module-tariff/middleware/tariff/domain"
)

// NewAnnouncementLogger cria um logger zap que escreve apenas a mensagem, uma
// linha por entrada, em w. É o formato de texto simples das linhas de tarifa.
func NewAnnouncementLogger(w io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel))
}

// LogAnnouncer implementa domain.Announcer.
type LogAnnouncer struct {
	log  *zap.Logger
	pick func() string
}

type LogAnnouncerOption func(*LogAnnouncer)

// WithSloganPicker troca a escolha aleatória (útil em testes).
func WithSloganPicker(pick func() string) LogAnnouncerOption {
	return func(a *LogAnnouncer) {
		if pick != nil {
			a.pick = pick
		}
	}
}

// NewLogAnnouncer usa log para emitir as linhas. log nil escreve em os.Stdout.
func NewLogAnnouncer(log *zap.Logger, opts ...LogAnnouncerOption) *LogAnnouncer {
	if log == nil {
		log = NewAnnouncementLogger(os.Stdout)
	}
	a := &LogAnnouncer{log: log, pick: RandomSlogan}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *LogAnnouncer) Announce(ev domain.TariffEvent) {
	a.log.Info(AnnouncementLine(ev, a.pick()))
}

// AnnouncementLine monta a linha descritiva (não é formato para parse).
func AnnouncementLine(ev domain.TariffEvent, slogan string) string {
	pct := ev.Label
	if pct == "" {
		pct = formatPercent(ev.Percentage)
	}
	return "JUST IMPOSED a " + pct +
		"% TARIFF on " + ev.Specifier +
		"! Original import took " + formatMillis(ev.Original) +
		" ms, now takes " + formatMillis(ev.Adjusted()) +
		" ms. " + slogan
}
