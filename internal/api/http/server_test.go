package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
)

type fakeReader struct {
	negotiations map[string]*negotiation.Negotiation
	order        []string
}

func (f *fakeReader) Get(_ context.Context, id string) (*negotiation.Negotiation, error) {
	n, ok := f.negotiations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", negotiation.ErrSessionNotFound, id)
	}
	return n, nil
}

func (f *fakeReader) List(context.Context) ([]*negotiation.Negotiation, error) {
	out := make([]*negotiation.Negotiation, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.negotiations[id])
	}
	return out, nil
}

func (f *fakeReader) Address() string { return "mpayer" }

func newReader(t *testing.T) *fakeReader {
	t.Helper()
	a := negotiation.New("a", message.RolePayer, "test", 100)
	b := negotiation.New("b", message.RolePayer, "test", 200)
	msg := message.New(&message.RequestDetails{
		Common:  message.Common{Time: 200, PayerData: b.PayerData()},
		Network: "test",
		Expires: 2000,
	})
	payload, err := message.NewProtoCodec().Serialize(msg)
	require.NoError(t, err)
	msg.Payload = payload
	msg.Status = message.StatusOK
	require.NoError(t, b.Append(msg))
	return &fakeReader{
		negotiations: map[string]*negotiation.Negotiation{"a": a, "b": b},
		order:        []string{"a", "b"},
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(":0", newReader(t), nil)
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","address":"mpayer"}`, rec.Body.String())
}

func TestListNegotiations(t *testing.T) {
	s := NewServer(":0", newReader(t), nil)

	rec := get(t, s, "/api/v1/negotiations")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, Summary{ID: "a", Status: "initialization", NextRole: "payer", CreatedAt: 100}, list[0])
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, 1, list[1].Messages)
	assert.Equal(t, string(message.TypeRequest), list[1].LastType)
	assert.Equal(t, "payee", list[1].NextRole)

	rec = get(t, s, "/api/v1/negotiations?status=negotiation")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetNegotiation(t *testing.T) {
	s := NewServer(":0", newReader(t), nil)

	rec := get(t, s, "/api/v1/negotiations/b")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Summary     Summary         `json:"summary"`
		Negotiation json.RawMessage `json:"negotiation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b", body.Summary.ID)

	var restored negotiation.Negotiation
	require.NoError(t, json.Unmarshal(body.Negotiation, &restored))
	assert.Equal(t, 1, restored.Len())

	rec = get(t, s, "/api/v1/negotiations/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unable to find the negotiation")
}

func TestMetricsAndVersion(t *testing.T) {
	s := NewServer(":0", newReader(t), nil)
	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = get(t, s, "/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}
