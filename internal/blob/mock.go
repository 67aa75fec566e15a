package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewMockForTests returns an *S3Store backed by an in-memory fake HTTP
// transport. Only PutObject is implemented; it is all the Store interface
// needs.
func NewMockForTests() (*S3Store, *MockState) {
	state := &MockState{objects: make(map[string][]byte)}
	rt := &mockRoundTripper{state: state}

	cfg, _ := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		// The fake transport stores the request body verbatim, so keep the
		// SDK from wrapping it in aws-chunked checksum framing.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	base := mustParseURL("https://mock.s3.local")
	return &S3Store{client: client, bucket: "mock-bucket", region: "us-east-1", baseURL: base}, state
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// MockState exposes the stored objects for assertions.
type MockState struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// Object returns the stored bytes for key.
func (m *MockState) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len returns the number of stored objects.
func (m *MockState) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type mockRoundTripper struct {
	state *MockState
}

func (rt *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Path style: /<bucket>/<key>
	key := ""
	path := req.URL.Path
	if len(path) > 0 {
		parts := bytes.SplitN([]byte(path[1:]), []byte("/"), 2)
		if len(parts) == 2 {
			key = string(parts[1])
		}
	}

	if req.Method == http.MethodPut && req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		rt.state.mu.Lock()
		rt.state.objects[key] = body
		rt.state.mu.Unlock()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     http.Header{"ETag": {`"mock-etag"`}},
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{},
	}, nil
}
