package model

// Record is one scraped item from a listing page, e.g. a book or a quote.
// The engine treats records as opaque: field names and values are defined
// entirely by the extractor that produced them.
//
// Design decision: We use a plain map rather than a typed struct because:
//  1. Different sites yield different field sets (title/price vs text/author)
//  2. The engine never inspects field values, only appends and persists them
//  3. JSON round-trips preserve the progress file schema without adapters
type Record map[string]any

// Clone returns a shallow copy of the record.
// Extractors hand records to the engine, which may persist them after the
// extractor has moved on; copying protects against accidental aliasing.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Field returns the string value for key, or empty string if the field is
// absent or not a string. Convenience for report writers.
func (r Record) Field(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
