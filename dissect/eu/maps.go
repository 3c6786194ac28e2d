package eu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const euMapsURL string = "https://tagpro.eu/?maps"

// GetMapNames queries the tagpro.eu map index, mapping map ids to map names.
func GetMapNames(ctx context.Context) (names map[int]string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, euMapsURL, nil)
	if err != nil {
		return
	}
	// identify ourselves
	req.Header.Add("User-Agent", "github.com/tagpro-science/tp-dissect")
	req.Header.Add("Accept", "text/html")
	var resp *http.Response
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		return
	}

	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error: %s returned %s", euMapsURL, resp.Status)
	}
	return parseMapHTML(resp.Body)
}

// parseMapHTML collects every link of the form ?map=<id> along with its text.
// The first name seen for an id wins.
func parseMapHTML(body io.Reader) (map[int]string, error) {
	z := html.NewTokenizer(body)
	names := make(map[int]string)

	id := -1
	var text strings.Builder
	for {
		tt := z.Next()

		// check for error or EOF
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("error during HTML parsing: %w", err)
			}
			if len(names) == 0 {
				return nil, errors.New("error: no map links found in HTML")
			}
			return names, nil
		}

		switch tt {
		case html.StartTagToken:
			t := z.Token()
			if t.Data != "a" {
				continue
			}
			id = -1
			text.Reset()
			for _, attr := range t.Attr {
				if attr.Key == "href" {
					id = mapIDFromHref(attr.Val)
				}
			}
		case html.TextToken:
			if id >= 0 {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			if id < 0 || z.Token().Data != "a" {
				continue
			}
			name := strings.TrimSpace(text.String())
			if _, ok := names[id]; !ok && name != "" {
				names[id] = name
			}
			id = -1
		}
	}
}

func mapIDFromHref(href string) int {
	u, err := url.Parse(href)
	if err != nil {
		return -1
	}
	raw := u.Query().Get("map")
	if raw == "" {
		return -1
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return -1
	}
	return id
}
