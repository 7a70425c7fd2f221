// Package analyzer names the two stock bleve analyzers this system binds
// index fields to — the tokenizing "standard" analyzer and the verbatim
// "keyword" analyzer — and provides the cache that doubles as the set of
// field names already registered into the search engine's field mapping.
package analyzer

// Analyzer names, matching bleve's stock registry entries.
const (
	Standard = "standard"
	Keyword  = "keyword"
)

// ForMangled returns the analyzer for every string-valued field that is not
// tokenized search text — sort-docvalue and group-docvalue fields, verbatim
// text and guids: always the verbatim analyzer, since these fields are
// never searched as free text.
func ForMangled() string {
	return Keyword
}
