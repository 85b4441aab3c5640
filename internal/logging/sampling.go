package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore samples everything below Error. Error and above always pass,
// so a failing backend is never hidden behind the sampler.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	severe := levelBand{Core: core, allow: func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel }}
	chatty := levelBand{Core: core, allow: func(l zapcore.Level) bool { return l < zapcore.ErrorLevel }}

	return zapcore.NewTee(
		severe,
		zapcore.NewSamplerWithOptions(chatty, cfg.Tick, cfg.Initial, cfg.Thereafter),
	)
}

// levelBand passes only the levels allow accepts.
type levelBand struct {
	zapcore.Core
	allow func(zapcore.Level) bool
}

func (b levelBand) Enabled(l zapcore.Level) bool {
	return b.allow(l) && b.Core.Enabled(l)
}

func (b levelBand) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !b.allow(e.Level) {
		return ce
	}
	return b.Core.Check(e, ce)
}

func (b levelBand) With(fields []zapcore.Field) zapcore.Core {
	return levelBand{Core: b.Core.With(fields), allow: b.allow}
}
