package analyzer

import (
	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// Registry holds the ordered analyzers for each language.
// Order matters: when two analyzers report the same metric for the same
// scope, the one registered first is kept.
type Registry struct {
	analyzers map[domain.Language][]domain.Analyzer
	order     []domain.Language
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[domain.Language][]domain.Analyzer)}
}

// DefaultRegistry wires the built-in analyzers. A nil runner uses os/exec.
func DefaultRegistry(runner CommandRunner) *Registry {
	if runner == nil {
		runner = NewExecRunner()
	}

	size := NewSizeAnalyzer()
	r := NewRegistry()
	r.Register(domain.LanguagePython, size)
	r.Register(domain.LanguagePython, NewRadonAnalyzer(runner))
	r.Register(domain.LanguagePython, NewComplexipyAnalyzer(runner))
	r.Register(domain.LanguageJavaScript, size)
	r.Register(domain.LanguageTypeScript, size)
	return r
}

// Register appends an analyzer to a language's list
func (r *Registry) Register(lang domain.Language, a domain.Analyzer) {
	if _, ok := r.analyzers[lang]; !ok {
		r.order = append(r.order, lang)
	}
	r.analyzers[lang] = append(r.analyzers[lang], a)
}

// For returns the analyzers registered for lang, in registration order
func (r *Registry) For(lang domain.Language) []domain.Analyzer {
	return append([]domain.Analyzer(nil), r.analyzers[lang]...)
}

// Languages returns the languages with at least one analyzer
func (r *Registry) Languages() []domain.Language {
	return append([]domain.Language(nil), r.order...)
}

// Availability reports which analyzers are installed, keyed by name
func (r *Registry) Availability() map[string]bool {
	out := make(map[string]bool)
	for _, lang := range r.order {
		for _, a := range r.analyzers[lang] {
			out[a.Name()] = a.IsAvailable()
		}
	}
	return out
}
