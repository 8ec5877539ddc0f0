package typechecker

import "clarity/analysis-go/pkg/analysis"

// NativeFunction enumerates every operator the language provides.
type NativeFunction int

const (
	NativeAdd NativeFunction = iota
	NativeSubtract
	NativeMultiply
	NativeDivide
	NativeModulo
	NativePower
	NativeXor
	NativeGreater
	NativeLess
	NativeGreaterEq
	NativeLessEq
	NativeAnd
	NativeOr
	NativeNot
	NativeEquals
	NativeHash160
	NativeSha256
	NativeKeccak256
	NativeIf
	NativeLet
	NativeBegin
	NativePrint
	NativeTuple
	NativeGet
	NativeList
	NativeMap
	NativeFilter
	NativeFold
	NativeSome
	NativeOk
	NativeErr
	NativeDefaultTo
	NativeExpects
	NativeExpectsErr
	NativeIsNone
	NativeIsOk
	NativeGetBlockInfo
	NativeVarGet
	NativeVarSet
	NativeMapGet
	NativeMapInsert
	NativeMapSet
	NativeMapDelete
	NativeContractMapGet
	NativeContractCall

	nativeCount
)

var nativeNames = [nativeCount]string{
	NativeAdd:            "+",
	NativeSubtract:       "-",
	NativeMultiply:       "*",
	NativeDivide:         "/",
	NativeModulo:         "mod",
	NativePower:          "pow",
	NativeXor:            "xor",
	NativeGreater:        ">",
	NativeLess:           "<",
	NativeGreaterEq:      ">=",
	NativeLessEq:         "<=",
	NativeAnd:            "and",
	NativeOr:             "or",
	NativeNot:            "not",
	NativeEquals:         "eq?",
	NativeHash160:        "hash160",
	NativeSha256:         "sha256",
	NativeKeccak256:      "keccak256",
	NativeIf:             "if",
	NativeLet:            "let",
	NativeBegin:          "begin",
	NativePrint:          "print",
	NativeTuple:          "tuple",
	NativeGet:            "get",
	NativeList:           "list",
	NativeMap:            "map",
	NativeFilter:         "filter",
	NativeFold:           "fold",
	NativeSome:           "some",
	NativeOk:             "ok",
	NativeErr:            "err",
	NativeDefaultTo:      "default-to",
	NativeExpects:        "expects!",
	NativeExpectsErr:     "expects-err!",
	NativeIsNone:         "is-none?",
	NativeIsOk:           "is-ok?",
	NativeGetBlockInfo:   "get-block-info",
	NativeVarGet:         "var-get",
	NativeVarSet:         "var-set!",
	NativeMapGet:         "map-get",
	NativeMapInsert:      "map-insert!",
	NativeMapSet:         "map-set!",
	NativeMapDelete:      "map-delete!",
	NativeContractMapGet: "contract-map-get",
	NativeContractCall:   "contract-call!",
}

var nativesByName = indexNatives()

func indexNatives() map[string]NativeFunction {
	out := make(map[string]NativeFunction, nativeCount)
	for i, name := range nativeNames {
		out[name] = NativeFunction(i)
	}
	return out
}

func lookupNative(name string) (NativeFunction, bool) {
	native, ok := nativesByName[name]
	return native, ok
}

func (n NativeFunction) String() string {
	if n < 0 || n >= nativeCount {
		return "unknown"
	}
	return nativeNames[n]
}

var (
	intOnly   = []analysis.TypeSignature{analysis.Int}
	hashable  = []analysis.TypeSignature{analysis.Int, analysis.BufferType{}}
	hash20    = analysis.BufferType{MaxLen: 20}
	hash32    = analysis.BufferType{MaxLen: 32}
	boolUnary = analysis.FixedFunction{Args: []analysis.FunctionArg{{Name: "value", Type: analysis.Bool}}, Returns: analysis.Bool}
)

// signature describes how arguments to n are checked.
func (n NativeFunction) signature() analysis.FunctionType {
	switch n {
	case NativeAdd, NativeSubtract, NativeMultiply, NativeDivide:
		return analysis.UnionArgsFunction{Allowed: intOnly, Count: 1, Variadic: true, Returns: analysis.Int}
	case NativeModulo, NativePower, NativeXor:
		return analysis.UnionArgsFunction{Allowed: intOnly, Count: 2, Returns: analysis.Int}
	case NativeGreater, NativeLess, NativeGreaterEq, NativeLessEq:
		return analysis.UnionArgsFunction{Allowed: intOnly, Count: 2, Returns: analysis.Bool}
	case NativeAnd, NativeOr:
		return analysis.VariadicFunction{Element: analysis.Bool, MinArgs: 1, Returns: analysis.Bool}
	case NativeNot:
		return boolUnary
	case NativeHash160:
		return analysis.UnionArgsFunction{Allowed: hashable, Count: 1, Returns: hash20}
	case NativeSha256, NativeKeccak256:
		return analysis.UnionArgsFunction{Allowed: hashable, Count: 1, Returns: hash32}
	case NativeEquals, NativeIf, NativeLet, NativeBegin, NativePrint, NativeTuple, NativeGet,
		NativeList, NativeMap, NativeFilter, NativeFold, NativeSome, NativeOk, NativeErr,
		NativeDefaultTo, NativeExpects, NativeExpectsErr, NativeIsNone, NativeIsOk,
		NativeGetBlockInfo, NativeVarGet, NativeVarSet, NativeMapGet, NativeMapInsert,
		NativeMapSet, NativeMapDelete, NativeContractMapGet, NativeContractCall:
		return analysis.SpecialFunction{Name: n.String()}
	default:
		panic("typechecker: unhandled native " + n.String())
	}
}

// nativeVariableType resolves the built-in symbols usable as values.
func nativeVariableType(name string) (analysis.TypeSignature, bool) {
	switch name {
	case "tx-sender":
		return analysis.Principal, true
	case "block-height":
		return analysis.Int, true
	default:
		return nil, false
	}
}

const (
	defineMap      = "define-map"
	defineDataVar  = "define-data-var"
	defineConstant = "define-constant"
	definePrivate  = "define-private"
	definePublic   = "define-public"
	defineReadOnly = "define-read-only"
)

func isDefineKeyword(name string) bool {
	switch name {
	case defineMap, defineDataVar, defineConstant, definePrivate, definePublic, defineReadOnly:
		return true
	default:
		return false
	}
}

// isReservedName reports names no declaration or binding may take.
func isReservedName(name string) bool {
	if _, ok := lookupNative(name); ok {
		return true
	}
	if _, ok := nativeVariableType(name); ok {
		return true
	}
	return isDefineKeyword(name)
}
