// Package joiner implements the multi-line directive pre-pass.
//
// Template directives ({% ... %}), variables ({{ ... }}) and comments
// ({# ... #}) may span several source lines. Downstream passes work on
// single-line directives, so the joiner collapses each spanning directive
// into one logical line and keeps a side table mapping every output line
// back to its original source line for diagnostics.
package joiner
