// Package commands defines the framewright CLI.
//
// Commands
//
//   - convert    Rewrite interactive React source into a frame-driven scene
//   - keyframes  Validate or repair an interpolation input range
//   - scaffold   Write a ready-to-preview project into a directory
//   - doctor     Check a project directory, optionally repairing it
//   - preview    Run the studio dev server for a project directory
//   - version    Print the build version
//
// # Implementation
//
// The root command loads the optional studio config (--config, or the
// FRAMEWRIGHT_CONFIG environment variable) before any subcommand runs,
// so every handler sees the same timeline defaults. --fps overrides the
// configured frame rate for a single invocation.
package commands
