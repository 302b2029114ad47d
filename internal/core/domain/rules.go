package domain

// KeywordRule maps a keyword or phrase to a category. Rules are evaluated in
// configured order; the first match wins.
type KeywordRule struct {
	Keyword  string
	Category string
}

// RoutingTable maps a category label to one or more destination addresses.
// Categories without an entry deliver to the default destination.
type RoutingTable struct {
	Routes             map[string][]string
	DefaultDestination string
}

// DestinationsFor returns the delivery addresses for a category, falling
// back to the default destination for unmapped categories.
func (t RoutingTable) DestinationsFor(category string) []string {
	if dests, ok := t.Routes[category]; ok && len(dests) > 0 {
		return dests
	}
	if t.DefaultDestination == "" {
		return nil
	}
	return []string{t.DefaultDestination}
}
