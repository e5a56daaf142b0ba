package catalog

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/velohq/velo/internal/utils"
)

const (
	nearListURL = "https://www.speedtest.net/api/js/servers?engine=js"
	fullListURL = "https://www.speedtest.net/speedtest-servers-static.php"
)

// Client fetches the public server catalog.
type Client struct {
	http    *http.Client
	nearURL string
	fullURL string
	log     zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient substitutes the HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithBaseURLs overrides the catalog endpoints, mainly for tests.
func WithBaseURLs(nearURL, fullURL string) ClientOption {
	return func(c *Client) {
		c.nearURL = nearURL
		c.fullURL = fullURL
	}
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    utils.NewHTTPClient(15 * time.Second),
		nearURL: nearListURL,
		fullURL: fullListURL,
		log:     utils.GetLogger("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Near fetches the distance-ranked list of nearby servers.
func (c *Client) Near() ([]Server, error) {
	resp, err := c.http.Get(c.nearURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching server list: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching server list: status %s", resp.Status)
	}
	var servers []Server
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("error parsing server list: %v", err)
	}
	c.log.Debug().Int("servers", len(servers)).Msg("Fetched near server list")
	return servers, nil
}

// All fetches the full static catalog. The XML form carries no distance
// information, so Distance stays zero for these entries.
func (c *Client) All() ([]Server, error) {
	c.log.Info().Str("url", c.fullURL).Msg("Fetching full server list")
	resp, err := c.http.Get(c.fullURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching full server list: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching full server list: status %s", resp.Status)
	}
	var doc struct {
		Servers []Server `xml:"servers>server"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error parsing full server list: %v", err)
	}
	c.log.Debug().Int("servers", len(doc.Servers)).Msg("Fetched full server list")
	return doc.Servers, nil
}
