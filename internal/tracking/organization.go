package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jmylchreest/phenhance/internal/analytics"
	"github.com/jmylchreest/phenhance/internal/metrics"
)

// OrganizationPath is the organization-info endpoint, relative to the base URL.
const OrganizationPath = "/astuteo-toolkit/info"

// ErrOrganizationMissing is returned when the response has no organization.
var ErrOrganizationMissing = errors.New("organization data not found in response")

// OrganizationInfo is the organization-info response body.
type OrganizationInfo struct {
	Organization string `json:"organization"`
	IsISP        *bool  `json:"is_isp,omitempty"`
}

// ISP reports whether the organization was flagged as an ISP.
func (i OrganizationInfo) ISP() bool {
	return i.IsISP != nil && *i.IsISP
}

// TrackOrganization fetches organization info for authKey and records it as
// an organization event and a profile attribute. An empty authKey returns
// false without any request. Failures are logged and reported as false.
func (c *Coordinator) TrackOrganization(ctx context.Context, authKey string) (ok bool) {
	if authKey == "" {
		c.recorder.IncOrganizationLookup(metrics.ResultSkipped)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error tracking organization", "panic", r)
			ok = false
		}
		c.recorder.IncOrganizationLookup(metrics.Result(ok))
	}()

	if !c.available() {
		return false
	}

	info, err := c.fetchOrganization(ctx, authKey)
	if err != nil {
		c.logger.Error("error tracking organization", "error", err)
		return false
	}

	c.logger.Debug("organization resolved", "organization", info.Organization, "is_isp", info.ISP())

	c.TrackEvent(EventOrganization, analytics.Properties{
		PropOrganization: info.Organization,
	})

	if err := c.peopleSet(analytics.Properties{PropOrganization: info.Organization}); err != nil {
		c.logger.Error("error tracking organization", "error", err)
		return false
	}

	return true
}

// organizationURL builds the lookup URL with the token as a query credential.
func (c *Coordinator) organizationURL(authKey string) (string, error) {
	if c.baseURL == "" {
		return "", errors.New("organization base URL not configured")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid organization base URL: %w", err)
	}
	u = u.JoinPath(OrganizationPath)

	q := u.Query()
	q.Set("authKey", authKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchOrganization performs the single lookup request. There is no retry.
func (c *Coordinator) fetchOrganization(ctx context.Context, authKey string) (*OrganizationInfo, error) {
	endpoint, err := c.organizationURL(authKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch organization data: %s", resp.Status)
	}

	var info OrganizationInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode organization data: %w", err)
	}
	if info.Organization == "" {
		return nil, ErrOrganizationMissing
	}

	return &info, nil
}
