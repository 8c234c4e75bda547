package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

const (
	defaultKakaoBaseURL = "https://dapi.kakao.com"
	kakaoSearchPath     = "/v2/local/search/address.json"
	defaultHTTPTimeout  = 10 * time.Second
)

// KakaoClient resolves addresses through the Kakao local search API.
type KakaoClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// KakaoOption customises KakaoClient construction.
type KakaoOption func(*KakaoClient)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(u string) KakaoOption {
	return func(c *KakaoClient) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) KakaoOption {
	return func(c *KakaoClient) { c.http = h }
}

// NewKakaoClient builds a client authenticated with a Kakao REST API key.
func NewKakaoClient(apiKey string, opts ...KakaoOption) *KakaoClient {
	c := &KakaoClient{
		apiKey:  apiKey,
		baseURL: defaultKakaoBaseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kakao returns coordinates as strings in the response documents. The road
// address is preferred when present; documents fall back to the lot-number
// address otherwise.
type kakaoResponse struct {
	Documents []kakaoDocument `json:"documents"`
}

type kakaoDocument struct {
	X           string        `json:"x"` // longitude
	Y           string        `json:"y"` // latitude
	RoadAddress *kakaoAddress `json:"road_address"`
}

type kakaoAddress struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Geocode resolves address to a coordinate, returning ErrAddressNotFound
// when the API has no candidates.
func (c *KakaoClient) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	u := c.baseURL + kakaoSearchPath + "?query=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinate{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body kakaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Coordinate{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(body.Documents) == 0 {
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}

	doc := body.Documents[0]
	x, y := doc.X, doc.Y
	if doc.RoadAddress != nil && doc.RoadAddress.X != "" && doc.RoadAddress.Y != "" {
		x, y = doc.RoadAddress.X, doc.RoadAddress.Y
	}
	lon, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("parse longitude %q: %w", x, err)
	}
	lat, err := strconv.ParseFloat(y, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("parse latitude %q: %w", y, err)
	}

	pos := model.Coordinate{Lat: lat, Lon: lon}
	if err := pos.Validate(); err != nil {
		return model.Coordinate{}, fmt.Errorf("geocode result: %w", err)
	}
	return pos, nil
}
