// Package vm implements the NALM stack machine.
//
// This package contains:
//   - the tagged Value representation and its coercion rules
//   - instruction parsing
//   - the operation table (one Execute/Emit pair per command)
//   - the Executor run loop and the IMPORT/INCLUDE loader
//
// Whole-program code generation lives in package compiler and is plugged
// into an Executor with WithCompiler, so that COMPILE can run without this
// package importing the backend.
package vm
