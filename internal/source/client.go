// Package source is the client for the remote read-only catalog API. It
// issues bounded paginated queries, caches responses for a fixed freshness
// window, and collapses concurrent identical fetches into one upstream call.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
)

// ErrUnavailable is returned when the catalog source cannot be reached or
// answers with a non-success status. Callers fall back to a degraded state
// instead of propagating it to the user.
var ErrUnavailable = errors.New("catalog source unavailable")

// Config holds the client settings.
type Config struct {
	// BaseURL of the catalog API, without a trailing slash.
	BaseURL string
	// Timeout bounds each request.
	Timeout time.Duration
	// CacheTTL is the freshness window for cached responses.
	CacheTTL time.Duration
}

// Params selects one primary query mode plus a pagination window. A non-empty
// Search wins over Category; with both empty the unfiltered listing is used.
type Params struct {
	Category string
	Search   string
	Limit    int
	Skip     int
}

// Result is a bounded page of products plus the source's total match count.
type Result struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

// Client talks to the catalog source.
type Client struct {
	base  string
	http  *http.Client
	cache *queryCache
	group singleflight.Group
}

// NewClient creates a Client. A nil transport uses http.DefaultTransport;
// the wiring layer passes an instrumented one.
func NewClient(cfg Config, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base: cfg.BaseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cache: newQueryCache(cfg.CacheTTL),
	}
}

// Query fetches one page of products for the given parameters.
func (c *Client) Query(ctx context.Context, p Params) (*Result, error) {
	key := fmt.Sprintf("query|%s|%s|%d|%d", p.Search, p.Category, p.Limit, p.Skip)
	if v, ok := c.cache.get(key); ok {
		return v.(*Result), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var out Result
		if err := c.getJSON(ctx, c.queryURL(p), &out); err != nil {
			return nil, err
		}
		c.cache.put(key, &out)
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int) (*catalog.Product, error) {
	key := "product|" + strconv.Itoa(id)
	if v, ok := c.cache.get(key); ok {
		return v.(*catalog.Product), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var out catalog.Product
		if err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.base, id), &out); err != nil {
			return nil, err
		}
		c.cache.put(key, &out)
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Product), nil
}

// Categories fetches the category list. The endpoint historically returned
// plain strings and now returns {name, slug} objects; both shapes are
// accepted and reduced to slugs/names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	const key = "categories"
	if v, ok := c.cache.get(key); ok {
		return v.([]string), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		body, err := c.get(ctx, c.base+"/products/categories")
		if err != nil {
			return nil, err
		}

		names, err := decodeCategories(body)
		if err != nil {
			return nil, errors.Wrap(err, "decode categories")
		}
		c.cache.put(key, names)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Recommendations returns up to limit products rated at least 4.5, best
// rated first.
func (c *Client) Recommendations(ctx context.Context, limit int) ([]catalog.Product, error) {
	return c.pickTop(ctx, limit, decimal.RequireFromString("4.5"), func(p catalog.Product) decimal.Decimal {
		return p.Rating
	})
}

// FeaturedProducts returns up to limit products rated at least 4.0 that also
// carry a discount above 10%, scored by rating plus a tenth of the discount.
func (c *Client) FeaturedProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	minDiscount := decimal.NewFromInt(10)
	ten := decimal.NewFromInt(10)

	res, err := c.Query(ctx, Params{Limit: 100})
	if err != nil {
		return nil, err
	}

	featured := make([]catalog.Product, 0, limit)
	for _, p := range res.Products {
		if p.Rating.GreaterThanOrEqual(decimal.NewFromInt(4)) && p.DiscountPercentage.GreaterThan(minDiscount) {
			featured = append(featured, p)
		}
	}
	score := func(p catalog.Product) decimal.Decimal {
		return p.Rating.Add(p.DiscountPercentage.Div(ten))
	}
	sort.Slice(featured, func(i, j int) bool {
		return score(featured[j]).LessThan(score(featured[i]))
	})
	return catalog.Paginate(featured, 0, limit), nil
}

func (c *Client) pickTop(ctx context.Context, limit int, minRating decimal.Decimal, by func(catalog.Product) decimal.Decimal) ([]catalog.Product, error) {
	res, err := c.Query(ctx, Params{Limit: 100})
	if err != nil {
		return nil, err
	}

	picked := make([]catalog.Product, 0, limit)
	for _, p := range res.Products {
		if p.Rating.GreaterThanOrEqual(minRating) {
			picked = append(picked, p)
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		return by(picked[j]).LessThan(by(picked[i]))
	})
	return catalog.Paginate(picked, 0, limit), nil
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.cache.clear()
}

// queryURL builds the endpoint URL for the primary mode plus pagination.
func (c *Client) queryURL(p Params) string {
	endpoint := c.base + "/products"
	q := url.Values{}

	switch {
	case p.Search != "":
		endpoint = c.base + "/products/search"
		q.Set("q", p.Search)
	case p.Category != "":
		endpoint = c.base + "/products/category/" + url.PathEscape(p.Category)
	}

	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("skip", strconv.Itoa(p.Skip))
	return endpoint + "?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "fetch %s: %s", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(ErrUnavailable, "fetch %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "read %s: %s", u, err)
	}
	return body, nil
}

// decodeCategories accepts an array whose elements are either plain strings
// or objects carrying name/slug fields.
func decodeCategories(body []byte) ([]string, error) {
	var names []string
	d := jx.DecodeBytes(body)

	err := d.Arr(func(d *jx.Decoder) error {
		switch d.Next() {
		case jx.String:
			s, err := d.Str()
			if err != nil {
				return err
			}
			names = append(names, s)
			return nil
		case jx.Object:
			var name, slug string
			if err := d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "name":
					v, err := d.Str()
					name = v
					return err
				case "slug":
					v, err := d.Str()
					slug = v
					return err
				default:
					return d.Skip()
				}
			}); err != nil {
				return err
			}
			if name == "" {
				name = slug
			}
			if name != "" {
				names = append(names, name)
			}
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
