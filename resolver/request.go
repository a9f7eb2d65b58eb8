package resolver

import "strings"

type LookupKind string

const (
	KindQuery LookupKind = "query"
	KindID    LookupKind = "id"
	KindURL   LookupKind = "url"
)

func (k LookupKind) String() string {
	return string(k)
}

// LookupRequest carries exactly one of Query, ID or URL. Blank values count
// as absent.
type LookupRequest struct {
	Query string `json:"query,omitempty"`
	ID    string `json:"videoId,omitempty"`
	URL   string `json:"url,omitempty"`
}

func ByQuery(text string) LookupRequest { return LookupRequest{Query: text} }
func ByID(id string) LookupRequest      { return LookupRequest{ID: id} }
func ByURL(url string) LookupRequest    { return LookupRequest{URL: url} }

// Kind returns the populated discriminant, or an InvalidInputError when none
// or more than one is set.
func (r LookupRequest) Kind() (LookupKind, error) {
	var kinds []LookupKind
	if strings.TrimSpace(r.Query) != "" {
		kinds = append(kinds, KindQuery)
	}
	if strings.TrimSpace(r.ID) != "" {
		kinds = append(kinds, KindID)
	}
	if strings.TrimSpace(r.URL) != "" {
		kinds = append(kinds, KindURL)
	}

	switch len(kinds) {
	case 0:
		return "", invalidInput("request has none of query, id or url", nil)
	case 1:
		return kinds[0], nil
	default:
		return "", invalidInput("request must set exactly one of query, id or url", nil)
	}
}

// Value returns the populated field, trimmed.
func (r LookupRequest) Value() string {
	kind, err := r.Kind()
	if err != nil {
		return ""
	}
	switch kind {
	case KindQuery:
		return strings.TrimSpace(r.Query)
	case KindID:
		return strings.TrimSpace(r.ID)
	default:
		return strings.TrimSpace(r.URL)
	}
}
