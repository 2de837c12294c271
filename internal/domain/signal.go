package domain

// Signal is one raw piece of external evidence of potential customer intent.
type Signal struct {
	Source string
	URL    string
	Title  string
	Text   string
	Author string
	// Extra holds source-specific fields (subreddit, repo, dataset id,
	// stars, timestamps). Persisted as opaque JSON.
	Extra map[string]any
}

// ExtraString returns a string-valued extra field, or "" if absent.
func (s Signal) ExtraString(key string) string {
	if s.Extra == nil {
		return ""
	}
	if v, ok := s.Extra[key].(string); ok {
		return v
	}
	return ""
}
