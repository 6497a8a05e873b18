// Package logger builds *slog.Logger instances for the service.
//
// New accepts functional options for level, format, output and static
// attributes. WithEnvironment picks defaults per deployment stage. Context
// extractors registered through WithContextExtractors add request-scoped
// attributes, such as the request id, to every record logged with a context.
//
//	log := logger.New(
//		logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), cfg.AppName),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscription provisioned", logger.UserID(id), logger.Plan("starter"))
//
// The helpers in attr.go keep attribute keys consistent across packages.
package logger
