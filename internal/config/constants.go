package config

const SourceFileExt = ".opal"

// SemanticsVersion is the "major.minor" semantics version this checker
// implements. Modules declaring a newer minor get a warning; a different
// major is a hard error.
const SemanticsVersion = "1.4"

// Built-in type names
const (
	ListTypeName   = "List"
	MapTypeName    = "Map"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// ResultBindingName is the reserved binding postconditions use to refer to
// the function's result value.
const ResultBindingName = "result"
