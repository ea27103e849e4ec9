package loc

// DiagnosticSeverity classifies a DiagnosticMessage: hard errors vs.
// recoverable warnings, infos, and hints.
type DiagnosticSeverity int

const (
	ErrorType DiagnosticSeverity = iota + 1
	WarningType
	InformationType
	HintType
)

// DiagnosticKind names the specific failure. Kinds group into parse
// errors (structural), graph errors (semantic), and lint warnings
// (recoverable).
type DiagnosticKind string

const (
	// Parse errors: structural.
	UnknownKeyword  DiagnosticKind = "UnknownKeyword"
	DuplicateId     DiagnosticKind = "DuplicateId"
	UnclosedBrace   DiagnosticKind = "UnclosedBrace"
	InvalidColor    DiagnosticKind = "InvalidColor"
	InvalidNumber   DiagnosticKind = "InvalidNumber"
	InvalidEnum     DiagnosticKind = "InvalidEnum"
	UnexpectedToken DiagnosticKind = "UnexpectedToken"
	InvalidImport   DiagnosticKind = "InvalidImport"

	// Graph errors: semantic.
	UnknownId         DiagnosticKind = "UnknownId"
	CyclicConstraint  DiagnosticKind = "CyclicConstraint"
	CyclicContainment DiagnosticKind = "CyclicContainment"

	// Lint warnings: recoverable.
	UnusedTheme            DiagnosticKind = "UnusedTheme"
	OrphanEdge             DiagnosticKind = "OrphanEdge"
	ConflictingConstraints DiagnosticKind = "ConflictingConstraints"
	UnresolvedReference    DiagnosticKind = "UnresolvedReference"
	AnonymousId            DiagnosticKind = "AnonymousId"
	DuplicateUse           DiagnosticKind = "DuplicateUse"
	UnknownProperty        DiagnosticKind = "UnknownProperty"
	ImportCycle            DiagnosticKind = "ImportCycle"
)

// DiagnosticLocation is the resolved, human-facing position of a
// diagnostic within a named document.
type DiagnosticLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

// DiagnosticMessage is the wire shape handed back by parse, validate,
// and lint.
type DiagnosticMessage struct {
	Text     string
	Code     DiagnosticKind
	Severity DiagnosticSeverity
	Location *DiagnosticLocation
}
