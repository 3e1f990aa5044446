package plesk

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Transport sends one serialized command document and returns the raw response body.  Connection,
// authentication and TLS belong to the implementation.
type Transport interface {
	Send(ctx context.Context, document []byte) ([]byte, error)
}

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webhosting",
		Subsystem: "plesk",
		Name:      "requests_total",
		Help:      "Panel API requests by HTTP status code, \"error\" when no response was received.",
	}, []string{"code"})
	requestSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "webhosting",
		Subsystem: "plesk",
		Name:      "request_duration_seconds",
		Help:      "Panel API round trip latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestSeconds)
}

// HTTPTransport posts documents to the panel agent endpoint.
type HTTPTransport struct {
	URL      string
	Login    string
	Password string
	Client   *http.Client
	Limiter  *rate.Limiter // optional
}

// NewHTTPTransport builds a transport from the panel configuration.
func NewHTTPTransport(c Config) *HTTPTransport {
	timeout := c.TimeoutSeconds
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: c.InsecureSkipVerify},
	}
	t := &HTTPTransport{
		URL:      c.URL(),
		Login:    c.Login,
		Password: c.Password,
		Client: &http.Client{
			Timeout:   time.Second * time.Duration(timeout),
			Transport: tr,
		},
	}
	if c.RequestsPerSecond > 0 {
		burst := int(c.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		t.Limiter = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), burst)
	}
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, document []byte) (body []byte, err error) {
	if t.Limiter != nil {
		if err = t.Limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: err}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(document))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	// set directly, the panel expects these names verbatim rather than canonicalized
	req.Header["HTTP_AUTH_LOGIN"] = []string{t.Login}
	req.Header["HTTP_AUTH_PASSWD"] = []string{t.Password}
	req.Header["HTTP_PRETTY_PRINT"] = []string{"TRUE"}
	req.Header.Set("Content-Type", "text/xml")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	response, err := client.Do(req)
	requestSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		log.Errorf("Problem with panel request to %s: %v", t.URL, err)
		return nil, &TransportError{Err: err}
	}
	defer response.Body.Close()
	requestsTotal.WithLabelValues(strconv.Itoa(response.StatusCode)).Inc()

	body, err = io.ReadAll(response.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: response.StatusCode, Err: err}
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &TransportError{StatusCode: response.StatusCode, Err: errors.New(http.StatusText(response.StatusCode))}
	}
	return body, nil
}
