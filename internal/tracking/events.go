package tracking

import (
	"maps"

	"github.com/jmylchreest/phenhance/internal/analytics"
)

// Built-in event names.
const (
	EventThemePreference = "theme_preference"
	EventSearch          = "search"
	EventOrganization    = "organization"
)

// customEventLabel is the metrics label for events that are not built in.
const customEventLabel = "custom"

// eventLabel bounds the event label set to the built-in names.
func eventLabel(name string) string {
	switch name {
	case EventThemePreference, EventSearch, EventOrganization:
		return name
	}
	return customEventLabel
}

// Profile attribute and property keys.
const (
	PropTheme              = "theme"
	PropPrefersDarkMode    = "prefers_dark_mode"
	PropSearchQuery        = "search_query"
	PropSearchResultsCount = "search_results_count"
	PropSearchCategory     = "search_category"
	PropOrganization       = "organization"
	PropInitialReferrer    = "initial_referrer"
)

// Raw search keys, copied through under the names callers pass them as.
const (
	PropQuery        = "query"
	PropResultsCount = "resultsCount"
	PropCategory     = "category"
)

// Theme is a resolved color-scheme preference.
type Theme string

const (
	ThemeUnset Theme = ""
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// SearchData describes a search performed by the user.
type SearchData struct {
	Query        string
	ResultsCount int
	Category     string
	// Extra properties are copied onto the event last and win on collision.
	Extra map[string]any
}

// properties builds the search event properties: the search_* keys with
// defaults, then every field that was set under its raw name, then Extra.
func (d SearchData) properties() analytics.Properties {
	props := analytics.Properties{
		PropSearchQuery:        d.Query,
		PropSearchResultsCount: d.ResultsCount,
		PropSearchCategory:     d.Category,
	}
	if d.Query != "" {
		props[PropQuery] = d.Query
	}
	if d.ResultsCount != 0 {
		props[PropResultsCount] = d.ResultsCount
	}
	if d.Category != "" {
		props[PropCategory] = d.Category
	}
	maps.Copy(props, d.Extra)
	return props
}
