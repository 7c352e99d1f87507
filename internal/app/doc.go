// Package app contains the core application logic for the transpiler tool.
// It defines the main App struct, its configuration, and the transpile
// lifecycle, decoupled from any specific entrypoint like a CLI.
package app
