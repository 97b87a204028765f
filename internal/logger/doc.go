// Package logger wraps zap with a console-format global logger and
// context helpers (ToContext/FromContext/WithName/WithKV), so every
// step of an installer run can report progress before it starts.
package logger
