package money

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/corriander/channelhop/pkg/cache"
	"github.com/corriander/channelhop/pkg/errors"
)

// ECBFeedURL is the European Central Bank daily reference-rate feed.
const ECBFeedURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

const (
	httpTimeout = 10 * time.Second

	// The ECB publishes once per working day; a day-long TTL keeps the
	// local snapshot at most one publication behind.
	ratesTTL = 24 * time.Hour
)

// Rates maps currency codes to their value per euro. The euro itself is
// always present with rate 1.
type Rates struct {
	Date   string             `json:"date"`
	PerEUR map[string]float64 `json:"per_eur"`
}

// Convert converts an amount between any two currencies in the table,
// going through the euro.
func (r Rates) Convert(a Amount, currency string) (Amount, error) {
	if a.Currency == currency {
		return a, nil
	}
	from, ok := r.PerEUR[a.Currency]
	if !ok {
		return Amount{}, errors.New(errors.ErrCodeUnsupported,
			"no exchange rate for %s", a.Currency)
	}
	to, ok := r.PerEUR[currency]
	if !ok {
		return Amount{}, errors.New(errors.ErrCodeUnsupported,
			"no exchange rate for %s", currency)
	}
	return Amount{Value: a.Value / from * to, Currency: currency}, nil
}

// Currencies returns the codes with a known rate.
func (r Rates) Currencies() []string {
	out := make([]string, 0, len(r.PerEUR))
	for code := range r.PerEUR {
		out = append(out, code)
	}
	return out
}

// ecbEnvelope mirrors the feed structure: nested Cube elements where the
// innermost carry currency and rate attributes.
type ecbEnvelope struct {
	Cube struct {
		Cube struct {
			Time  string `xml:"time,attr"`
			Cubes []struct {
				Currency string  `xml:"currency,attr"`
				Rate     float64 `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// RatesClient fetches and caches the ECB feed.
type RatesClient struct {
	http  *http.Client
	cache cache.Cache
	url   string
}

// NewRatesClient creates a client backed by the given cache. Pass a
// NullCache to always hit the network.
func NewRatesClient(c cache.Cache) *RatesClient {
	return &RatesClient{
		http:  &http.Client{Timeout: httpTimeout},
		cache: c,
		url:   ECBFeedURL,
	}
}

// Rates returns the current exchange-rate table, served from cache when a
// fresh snapshot exists. If refresh is true the cache is bypassed.
func (c *RatesClient) Rates(ctx context.Context, refresh bool) (Rates, error) {
	key := cache.RatesKey()

	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var r Rates
			if err := json.Unmarshal(data, &r); err == nil {
				return r, nil
			}
		}
	}

	var r Rates
	fetch := func() error {
		var err error
		r, err = c.fetch(ctx)
		return err
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return Rates{}, err
	}

	if data, err := json.Marshal(r); err == nil {
		_ = c.cache.Set(ctx, key, data, ratesTTL)
	}
	return r, nil
}

func (c *RatesClient) fetch(ctx context.Context) (Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Rates{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Rates{}, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetching exchange rates"))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Rates{}, cache.Retryable(errors.New(errors.ErrCodeNetwork,
			"exchange rate feed returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return Rates{}, errors.New(errors.ErrCodeNetwork,
			"exchange rate feed returned status %d", resp.StatusCode)
	}

	var env ecbEnvelope
	if err := xml.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Rates{}, errors.Wrap(errors.ErrCodeData, err, "decoding exchange rate feed")
	}

	day := env.Cube.Cube
	r := Rates{Date: day.Time, PerEUR: map[string]float64{EUR: 1}}
	for _, cube := range day.Cubes {
		if cube.Currency == "" || cube.Rate <= 0 {
			continue
		}
		r.PerEUR[cube.Currency] = cube.Rate
	}
	if len(r.PerEUR) < 2 {
		return Rates{}, errors.New(errors.ErrCodeData, "exchange rate feed contained no rates")
	}
	return r, nil
}
