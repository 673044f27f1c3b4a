package httpclient

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for the gateways' XML web services.
type Client struct {
	r *resty.Client
}

// Response carries the raw outcome of one call. Non-2xx statuses are not
// an error here: the gateways put structured rejections in the body, and
// only the caller can tell a rejection from a framing problem.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carried a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New creates a client with the gateways' fixed 60-second deadline and a
// single attempt. A timed-out instruction surfaces to the caller, who
// owns the retry decision for the whole checkout cycle.
func New() *Client {
	r := resty.New().
		SetTimeout(60 * time.Second).
		SetRetryCount(0)

	return &Client{r: r}
}

// WithTimeout sets a custom deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithBasicAuth authenticates every request with HTTP Basic credentials.
func (c *Client) WithBasicAuth(user, pass string) *Client {
	c.r.SetBasicAuth(user, pass)
	return c
}

// WithQueryCredentials appends credential query parameters to every request.
func (c *Client) WithQueryCredentials(params map[string]string) *Client {
	c.r.SetQueryParams(params)
	return c
}

// WithHeader sets a header on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// WithInsecureSkipVerify disables TLS certificate verification. Sandbox
// endpoints only; production calls must keep the default verification.
func (c *Client) WithInsecureSkipVerify() *Client {
	c.r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	return c
}

// PostXML sends an XML document and returns the raw response.
func (c *Client) PostXML(ctx context.Context, url string, body []byte) (*Response, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/xml; charset=UTF-8").
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// Get fetches a resource and returns the raw response.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := c.r.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
