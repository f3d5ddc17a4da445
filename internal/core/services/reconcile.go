package services

import (
	"sort"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/logger"
)

// Reconcile matches annotations (in original-text coordinates) to the
// fragment's token stream, tolerating drift between analyzer and
// tokenizer boundaries.
//
// Matching is two-phase and short-circuiting: exact offset equality is
// the cheap, unambiguous common case; fuzzy matching exists solely to
// absorb boundary drift introduced by wrapping and normalisation and is
// deliberately conservative (containment + text equality + ambiguity
// guard) so an unrelated token is never labelled with someone else's
// type. Each annotation decorates at most one token. Annotations left
// unconsumed after the pass are discarded at debug level; commonly the
// tokenizer and the analyzer disagree about identifier boundaries, such
// as a qualified path treated as one unit by one side and several
// tokens by the other.
func Reconcile(tokens []domain.Token, annotations []domain.MappedAnnotation) []domain.DecoratedToken {
	// Sort by start ascending, narrower range first on ties: a tighter
	// match is preferred when several annotations claim the same
	// leading position.
	order := make([]int, len(annotations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ai, bi := annotations[order[a]], annotations[order[b]]
		if ai.Span.Start != bi.Span.Start {
			return ai.Span.Start < bi.Span.Start
		}
		return ai.Span.Len() < bi.Span.Len()
	})

	consumed := make([]bool, len(annotations))

	// Narrowest annotation per exact span wins.
	exactBySpan := make(map[domain.Span]int, len(annotations))
	for _, idx := range order {
		if _, ok := exactBySpan[annotations[idx].Span]; !ok {
			exactBySpan[annotations[idx].Span] = idx
		}
	}

	decorated := make([]domain.DecoratedToken, len(tokens))
	for i, tok := range tokens {
		decorated[i] = domain.DecoratedToken{Token: tok}

		if idx, ok := exactBySpan[tok.Span]; ok && !consumed[idx] {
			consumed[idx] = true
			decorated[i].Annotation = &domain.TypeAnnotation{
				Type:       annotations[idx].Type,
				Confidence: domain.ConfidenceExact,
			}
			continue
		}

		if tok.Kind != domain.KindIdentifier {
			// Fuzzy matching only ever targets identifiers; punctuation
			// and keywords stay undecorated by default.
			continue
		}

		for _, idx := range order {
			if consumed[idx] {
				continue
			}
			ann := annotations[idx]
			if ann.Span.Start > tok.Span.Start {
				// Sorted by start: no later annotation can contain this token.
				break
			}
			if ann.Span.Len() < 2 {
				// Single-byte ranges mostly mark operators; they decorate
				// only on exact span equality, never through fuzzy drift.
				continue
			}
			if !fuzzyMatches(ann, tok, tokens) {
				continue
			}
			consumed[idx] = true
			decorated[i].Annotation = &domain.TypeAnnotation{
				Type:       ann.Type,
				Confidence: domain.ConfidenceFuzzy,
			}
			break
		}
	}

	if logger.IsVerbose() {
		for idx, ann := range annotations {
			if !consumed[idx] {
				logger.Debug("discarding annotation [%d,%d) %q: no matching token", ann.Span.Start, ann.Span.End, ann.Type)
			}
		}
	}

	return decorated
}

// fuzzyMatches reports whether ann may decorate tok under the
// conservative fuzzy rules: the annotation range fully contains the
// token, the identifier hint (when present) equals the token text, and
// without a hint the range must not also contain a different identifier
// that the annotation could equally be describing.
func fuzzyMatches(ann domain.MappedAnnotation, tok domain.Token, tokens []domain.Token) bool {
	if !ann.Span.Contains(tok.Span) {
		return false
	}
	if ann.Identifier != "" {
		return ann.Identifier == tok.Text
	}
	for _, other := range tokens {
		if other.Span == tok.Span || other.Kind != domain.KindIdentifier {
			continue
		}
		if ann.Span.Contains(other.Span) && other.Text != tok.Text {
			return false
		}
	}
	return true
}
