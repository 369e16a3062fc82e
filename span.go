package revise

// SpanKind identifies a class of structural markup that must survive diffing intact.
type SpanKind int

// Span kinds. Annotations are masked first, the rest in declaration order.
const (
	Anchor SpanKind = iota
	CrossRef
	Math
	Citation
	// Annotation is CriticMarkup already present in a text before the merge.
	Annotation
)

// String returns the lowercase span kind name.
func (k SpanKind) String() string {
	switch k {
	case Anchor:
		return "anchor"
	case CrossRef:
		return "crossref"
	case Math:
		return "math"
	case Citation:
		return "citation"
	case Annotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// ProtectedSpan records one structural marker replaced by a placeholder before diffing.
type ProtectedSpan struct {
	Kind        SpanKind
	Placeholder string
	Original    string
	Plain       string // Math only: simplified rendering used to spot plain-text round trips
}
