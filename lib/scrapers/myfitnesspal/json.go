package myfitnesspal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

func decodeJson(body []byte, out any) error {
	return json.Unmarshal(body, out)
}

// nextData pulls the embedded page-state json out of a server-rendered
// page. Newer pages carry their data in a script tag instead of the
// visible markup.
func nextData(doc *goquery.Document) ([]byte, error) {
	script := doc.Find("script#__NEXT_DATA__")
	if script.Length() == 0 {
		return nil, fmt.Errorf("page carries no embedded state")
	}
	return []byte(script.First().Text()), nil
}

// dehydratedQueries decodes the react-query dehydrated state embedded
// in next data: a list of (queryKey, state.data) pairs. Callers match
// on the key's first element to find the payload they want.
type dehydratedQuery struct {
	QueryKey []json.RawMessage `json:"queryKey"`
	State    struct {
		Data json.RawMessage `json:"data"`
	} `json:"state"`
}

func dehydratedQueries(page []byte) ([]dehydratedQuery, error) {
	var payload struct {
		Props struct {
			PageProps struct {
				DehydratedState struct {
					Queries []dehydratedQuery `json:"queries"`
				} `json:"dehydratedState"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	err := json.Unmarshal(page, &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded state: %w", err)
	}
	return payload.Props.PageProps.DehydratedState.Queries, nil
}

// queryKeyName returns the string form of a query key element, or ""
// when the element isn't a string.
func queryKeyName(key []json.RawMessage) string {
	if len(key) == 0 {
		return ""
	}
	var name string
	if json.Unmarshal(bytes.TrimSpace(key[0]), &name) != nil {
		return ""
	}
	return name
}
