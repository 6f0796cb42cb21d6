// Package logger builds *slog.Logger instances with environment defaults and
// context-driven attributes.
//
// New applies Option values, picks a JSON or text handler and wraps it in a
// LogHandlerDecorator which runs every registered ContextExtractor on each
// record. The attribute helpers in attr.go keep key names consistent across
// the broadcast, queue and delivery components.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "notifyhub"),
//		logger.WithContextExtractors(requestid.LogExtractor()),
//	)
//	log.InfoContext(ctx, "message queued",
//		logger.Queue("mail"), logger.SequenceNumber(seq))
package logger
