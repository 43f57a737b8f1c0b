// Package visit provides the traversal scaffolding the analyzers (package
// analyze) run over a function's AST. Rather than double dispatch (a
// Visit/Accept method pair on every node type), it follows spec.md §9's
// license to use "an inspector-lambda passed to a traversal routine": a
// Visitor is a set of optional callbacks, and Walk drives a single
// recursive descent over a *ast.Block calling whichever are set.
package visit
