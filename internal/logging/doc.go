// Package logging provides structured logging for vocabadmin.
//
// # Overview
//
// Logging wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Dual output (stdout + OpenTelemetry)
//   - Automatic context field injection (trace_id, request.id)
//   - Secret redaction for bearer tokens, passwords and client secrets
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "6f1c0e0e-5b8f-4a7c-9d59-2f3b6c1f1e2a")
//	logger.Info(ctx, "categories loaded", zap.Int("count", n))
//
// Bearer tokens never reach the output: fields named token, authorization,
// password, client_secret (and similar) are replaced, and values matching
// "Bearer ..." are replaced wherever they appear.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "login succeeded")
//	tl.AssertLogged(t, zapcore.InfoLevel, "login succeeded")
//	tl.AssertNoSecrets(t)
package logging
