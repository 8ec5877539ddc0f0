// Package typechecker implements the static semantics of contracts. It walks
// the parsed forms of one contract in source order, registers each top-level
// declaration into a growing ContractAnalysis and checks every expression
// against the lexical typing context and the closed table of native
// operators. Checking is fail-fast: the first error aborts the contract and
// nothing is published to the analysis database.
package typechecker
