package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/erikh/uptime/pkg/api"
	"github.com/ghodss/yaml"
	"github.com/go-jose/go-jose/v3"
)

var (
	ErrAcquireNonce = errors.New("Could not acquire nonce")
	ErrMarshal      = errors.New("Could not marshal payload")
	ErrBadResponse  = errors.New("Invalid response from uptime server")
)

type Client struct {
	AuthKey *jose.JSONWebKey `json:"auth_key"`
	BaseURL string           `json:"base_url"`

	HTTPClient *http.Client `json:"-"`
}

func Load(filename string) (*Client, error) {
	byt, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Could not read client configuration: %w", err)
	}

	var c Client

	if err := yaml.Unmarshal(byt, &c); err != nil {
		return nil, fmt.Errorf("Could not unmarshal client configuration: %w", err)
	}

	if c.AuthKey == nil {
		return nil, fmt.Errorf("Client configuration %q has no auth_key", filename)
	}

	return &c, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}

	return c.HTTPClient
}

func (c *Client) endpoint(path string) (string, error) {
	baseurl, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("Base URL %q is invalid: %w", c.BaseURL, err)
	}

	return baseurl.JoinPath("/" + path).String(), nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Join(ErrBadResponse, err)
	}
	defer resp.Body.Close()

	byt, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrBadResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrBadResponse, fmt.Errorf("status was %v: %v", resp.StatusCode, string(bytes.TrimSpace(byt))))
	}

	return byt, nil
}

func (c *Client) GetNonce(ctx context.Context) ([]byte, error) {
	u, err := c.endpoint(api.PathNonce)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	byt, err := c.do(req)
	if err != nil {
		return nil, errors.Join(ErrAcquireNonce, err)
	}

	nonce, err := api.Decrypt(c.AuthKey, byt)
	if err != nil {
		return nil, errors.Join(ErrAcquireNonce, err)
	}

	return nonce, nil
}

func (c *Client) PrepareRequest(ctx context.Context, msg api.Request) ([]byte, error) {
	nonce, err := c.GetNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve nonce: %w", err)
	}

	if err := msg.SetNonce(nonce); err != nil {
		return nil, fmt.Errorf("Could not set nonce: %w", err)
	}

	out, err := api.Encrypt(c.AuthKey, msg)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}

	return out, nil
}

func (c *Client) Exchange(ctx context.Context, msg api.Request) (api.Message, error) {
	u, err := c.endpoint(msg.Endpoint())
	if err != nil {
		return nil, err
	}

	out, err := c.PrepareRequest(ctx, msg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewBuffer(out))
	if err != nil {
		return nil, err
	}

	byt, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to deliver %T: %w", msg, err)
	}

	byt, err = api.Decrypt(c.AuthKey, byt)
	if err != nil {
		return nil, err
	}

	res := msg.Response()

	if err := res.Unmarshal(byt); err != nil {
		return nil, errors.Join(ErrBadResponse, err)
	}

	return res, nil
}

// Uptime asks the server for its host's uptime.
func (c *Client) Uptime(ctx context.Context) (*api.UptimeResponse, error) {
	res, err := c.Exchange(ctx, &api.UptimeRequest{})
	if err != nil {
		return nil, err
	}

	return res.(*api.UptimeResponse), nil
}
