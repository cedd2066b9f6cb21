package resolver

import (
	"log/slog"

	"voxmerge/internal/logging"
	"voxmerge/internal/refindex"
	"voxmerge/internal/registry"
)

// Reference is an audio reference extracted from a transcript line. Ephemeral;
// it exists only for the duration of a merge pass.
type Reference struct {
	// Raw is the literal filename or identifier string following the audio
	// marker, e.g. "received_abcd....opus".
	Raw string
}

// Resolution is the outcome of resolving a reference. Matched with empty Text
// means the transcription exists but is empty; Matched false means no match,
// which is a normal outcome rather than an error.
type Resolution struct {
	Matched  bool
	Text     string
	Strategy string
}

// Context carries the shared data strategies consult. Strategies only read
// from it, so resolutions may run concurrently.
type Context struct {
	Contact string
	// Index is the contact's own reference index.
	Index *refindex.Index
	// AllIndexes holds every contact's index, keyed by contact name. Used by
	// the cross-contact fallback because earlier pipeline stages sometimes
	// filed audio under the wrong contact.
	AllIndexes map[string]*refindex.Index
	// Registry backs the on-disk fingerprint strategy.
	Registry *registry.Registry
	// AudioDir is the contact directory searched for the referenced file.
	AudioDir string
}

// Strategy is one matching capability. Implementations must not mutate the
// context; returning false means "no opinion", letting the cascade continue.
type Strategy interface {
	Name() string
	Resolve(ref Reference, rctx *Context) (string, bool)
}

// Resolver applies an ordered list of strategies and stops at the first
// success. Naming drift across pipeline stages means no single join key is
// reliable; the fixed order trades recall for determinism.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New builds a resolver with the given strategy order. With no strategies it
// uses DefaultStrategies. Adding a matching capability is appending a
// Strategy implementation, never editing the cascade.
func New(logger *slog.Logger, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logging.NewComponentLogger(logger, "resolver"),
	}
}

// DefaultStrategies returns the production cascade, highest confidence first:
// exact converted-name match, on-disk fingerprint, identifier within contact,
// identifier across all contacts.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ExactNameStrategy{},
		FingerprintStrategy{},
		ContactIdentifierStrategy{},
		CrossContactIdentifierStrategy{},
	}
}

// Resolve runs the cascade for one reference. It never fails for unresolved
// input; the zero Resolution reports no match.
func (r *Resolver) Resolve(ref Reference, rctx *Context) Resolution {
	if rctx == nil || ref.Raw == "" {
		return Resolution{}
	}

	for _, strategy := range r.strategies {
		text, ok := strategy.Resolve(ref, rctx)
		if !ok {
			continue
		}
		r.logger.Debug("reference resolved",
			logging.String(logging.FieldContact, rctx.Contact),
			logging.String("reference", ref.Raw),
			logging.String("strategy", strategy.Name()),
			logging.Int("text_length", len([]rune(text))))
		return Resolution{Matched: true, Text: text, Strategy: strategy.Name()}
	}

	r.logger.Debug("reference unresolved",
		logging.String(logging.FieldContact, rctx.Contact),
		logging.String("reference", ref.Raw))
	return Resolution{}
}
