// Package utils exposes reusable helpers consumed by the command line application.
//
// ConfigurationLoader layers embedded defaults, configuration files and environment variables
// through Viper. LoggerFactory builds zap loggers that write to standard error, and
// CommandContextAccessor carries the loaded configuration metadata through Cobra command contexts.
package utils
