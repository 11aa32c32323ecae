package oauthx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// FetchClientCredentials retrieves this service's client id/secret pair from
// the provider. First hop of the two-factor completion chain.
func (c *Client) FetchClientCredentials(ctx context.Context) (ClientCredentials, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/oauth2/credentials", nil, nil)
	if err != nil {
		return ClientCredentials{}, err
	}

	var creds ClientCredentials
	if err := decodeJSON(resp, &creds, http.StatusOK); err != nil {
		return ClientCredentials{}, err
	}
	return creds, nil
}

// Authorize obtains an authorization code for the given subject. Second hop.
func (c *Client) Authorize(ctx context.Context, creds ClientCredentials, subject string) (AuthorizationCode, error) {
	data := url.Values{
		"response_type": {"code"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"subject":       {subject},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/authorize",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return AuthorizationCode{}, err
	}

	var code AuthorizationCode
	if err := decodeJSON(resp, &code, http.StatusOK); err != nil {
		return AuthorizationCode{}, err
	}
	return code, nil
}

// Exchange swaps an authorization code for an access token. Final hop.
func (c *Client) Exchange(ctx context.Context, creds ClientCredentials, code AuthorizationCode) (TokenData, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"code":          {code.Code},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/token",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return TokenData{}, err
	}

	var token TokenData
	if err := decodeJSON(resp, &token, http.StatusOK); err != nil {
		return TokenData{}, err
	}
	return token, nil
}

// Introspect asks the provider whether a bearer token is live and who it was
// issued for.
func (c *Client) Introspect(ctx context.Context, bearer string) (Introspection, error) {
	data := url.Values{"token": {bearer}}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/introspect",
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return Introspection{}, err
	}

	var result Introspection
	if err := decodeJSON(resp, &result, http.StatusOK); err != nil {
		return Introspection{}, err
	}
	return result, nil
}
