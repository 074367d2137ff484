package marketplace

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

const (
	paapiService = "ProductAdvertisingAPI"
	paapiTarget  = "com.amazon.paapi5.v1.SearchItems"
	paapiPath    = "/paapi5/searchitems"
)

// SignedClient is the stricter marketplace sibling: same search contract,
// different authentication handshake (AWS Signature v4). Unlike Client it
// returns errors, so the reconciler can detect a total upstream failure
// and switch to its generator-only fallback.
type SignedClient struct {
	httpClient   *http.Client
	endpoint     string
	host         string
	region       string
	accessKey    string
	secretKey    string
	associateTag string
	now          func() time.Time
	log          *logger.Logger
}

func NewSignedClient(accessKey, secretKey, associateTag, region, host string, timeout time.Duration, log *logger.Logger) *SignedClient {
	return &SignedClient{
		httpClient:   &http.Client{Timeout: timeout},
		endpoint:     "https://" + host + paapiPath,
		host:         host,
		region:       region,
		accessKey:    accessKey,
		secretKey:    secretKey,
		associateTag: associateTag,
		now:          time.Now,
		log:          log,
	}
}

func (c *SignedClient) Search(ctx context.Context, query string, maxPrice float64) ([]domain.Listing, error) {
	body, err := json.Marshal(c.payload(query, maxPrice))
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	for k, v := range c.signedHeaders(c.now().UTC()) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)
	}

	var payload paapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	listings := parseItems(payload)
	c.log.Debug("signed marketplace search", "query", query, "listings", len(listings))
	return listings, nil
}

func (c *SignedClient) payload(query string, maxPrice float64) map[string]any {
	p := map[string]any{
		"Keywords":    query,
		"PartnerTag":  c.associateTag,
		"PartnerType": "Associates",
		"Marketplace": "www.amazon.com",
		"Resources": []string{
			"ItemInfo.Title",
			"Offers.Listings.Price",
			"Images.Primary.Medium",
		},
		"ItemCount": 5,
	}
	if maxPrice > 0 {
		// PAAPI expresses prices in cents.
		p["MaxPrice"] = int(maxPrice * 100)
	}
	return p
}

// signedHeaders derives the AWS Signature v4 header set, timestamped to
// the second.
func (c *SignedClient) signedHeaders(now time.Time) map[string]string {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	canonical := c.canonicalRequest(amzDate)
	toSign := c.stringToSign(canonical, dateStamp, amzDate)
	signature := c.signature(toSign, dateStamp)

	return map[string]string{
		"Content-Encoding": "amz-1.0",
		"Content-Type":     "application/json",
		"X-Amz-Date":       amzDate,
		"X-Amz-Target":     paapiTarget,
		"Authorization":    c.authHeader(signature, dateStamp),
	}
}

func (c *SignedClient) canonicalRequest(amzDate string) string {
	return strings.Join([]string{
		http.MethodPost,
		paapiPath,
		"",
		"host:" + c.host,
		"x-amz-date:" + amzDate,
		"",
		"host;x-amz-date",
		hexSHA256(nil),
	}, "\n")
}

func (c *SignedClient) stringToSign(canonicalRequest, dateStamp, amzDate string) string {
	return strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		dateStamp + "/" + c.region + "/" + paapiService + "/aws4_request",
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")
}

// signature runs the 4-part key derivation chain:
// date -> region -> service -> signing key.
func (c *SignedClient) signature(stringToSign, dateStamp string) string {
	kDate := hmacSHA256([]byte("AWS4"+c.secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, c.region)
	kService := hmacSHA256(kRegion, paapiService)
	kSigning := hmacSHA256(kService, "aws4_request")
	return hex.EncodeToString(hmacSHA256(kSigning, stringToSign))
}

func (c *SignedClient) authHeader(signature, dateStamp string) string {
	return fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s/%s/%s/aws4_request, SignedHeaders=host;x-amz-date, Signature=%s",
		c.accessKey, dateStamp, c.region, paapiService, signature,
	)
}

func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type paapiResponse struct {
	SearchResult struct {
		Items []paapiItem `json:"Items"`
	} `json:"SearchResult"`
}

type paapiItem struct {
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Offers struct {
		Listings []struct {
			Price struct {
				DisplayAmount string `json:"DisplayAmount"`
			} `json:"Price"`
		} `json:"Listings"`
	} `json:"Offers"`
	Images struct {
		Primary struct {
			Medium struct {
				URL string `json:"URL"`
			} `json:"Medium"`
		} `json:"Primary"`
	} `json:"Images"`
	BrowseNodeInfo struct {
		BrowseNodes []struct {
			Name string `json:"Name"`
		} `json:"BrowseNodes"`
	} `json:"BrowseNodeInfo"`
}

// parseItems converts PAAPI items to listings, skipping individually
// malformed entries rather than failing the whole response.
func parseItems(payload paapiResponse) []domain.Listing {
	listings := make([]domain.Listing, 0, len(payload.SearchResult.Items))
	for _, item := range payload.SearchResult.Items {
		if item.ItemInfo.Title.DisplayValue == "" || len(item.Offers.Listings) == 0 {
			continue
		}
		listing := domain.Listing{
			Title:    item.ItemInfo.Title.DisplayValue,
			Price:    parsePrice(item.Offers.Listings[0].Price.DisplayAmount),
			URL:      item.DetailPageURL,
			Image:    item.Images.Primary.Medium.URL,
			Category: domain.CategoryGeneral,
		}
		if len(item.BrowseNodeInfo.BrowseNodes) > 0 && item.BrowseNodeInfo.BrowseNodes[0].Name != "" {
			listing.Category = item.BrowseNodeInfo.BrowseNodes[0].Name
		}
		if !listing.Usable() {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}
