package entity

import "time"

// QueryLanguage is the only structural query language emitted.
const QueryLanguage = "xpath"

// CompiledQuery is the output of a selector build: a singleton
// {language: query} map plus the constraints the query could not express.
type CompiledQuery struct {
	Query    map[string]string
	Residual Selector
	// Reverse is set for reverse axes: drivers return document order, but
	// positions count from the context node outwards.
	Reverse bool
}

func NewCompiledQuery(xpath string, residual Selector) CompiledQuery {
	return CompiledQuery{
		Query:    map[string]string{QueryLanguage: xpath},
		Residual: residual,
	}
}

func (q CompiledQuery) XPath() string {
	return q.Query[QueryLanguage]
}

// LocateConfig is read by the wait and element layers.
type LocateConfig struct {
	// DefaultTimeout of zero or less disables retrying; every check still runs once.
	DefaultTimeout time.Duration
	RelaxedLocate  bool
	PollInterval   time.Duration
}

const (
	DefaultLocateTimeout = 30 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
)

func DefaultLocateConfig() LocateConfig {
	return LocateConfig{
		DefaultTimeout: DefaultLocateTimeout,
		RelaxedLocate:  true,
		PollInterval:   DefaultPollInterval,
	}
}
