package logger

import "go.uber.org/fx"

// Module provides the shared slog logger, built once from config and
// injected into every component.
var Module = fx.Provide(New)
