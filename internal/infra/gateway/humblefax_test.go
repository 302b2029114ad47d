package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*HumbleFaxClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewHumbleFaxClient(config.GatewayConfig{
		BaseURL:   srv.URL,
		AccessKey: "ak",
		SecretKey: "sk",
		ToNumber:  "15551234567",
		Lookback:  2 * time.Minute,
		Timeout:   5 * time.Second,
	})
	return c, srv
}

func TestListPending(t *testing.T) {
	var gotAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/incomingFaxes" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "ak" && pass == "sk"
		if r.URL.Query().Get("toNumber") != "15551234567" {
			t.Errorf("Expected toNumber in query, got %q", r.URL.Query().Get("toNumber"))
		}
		fmt.Fprint(w, `{"data":{"incomingFaxes":[
			{"id":"fax-1","fromNameAddressBook":"LabCorp","time":1756400000},
			{"id":"fax-2","fromNameAddressBook":"","time":"1756400060"}
		]}}`)
	})
	c, _ := newTestClient(t, handler)

	summaries, err := c.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if !gotAuth {
		t.Error("Expected basic auth credentials on listing request")
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "fax-1" || summaries[0].Sender != "LabCorp" {
		t.Errorf("Unexpected first summary: %+v", summaries[0])
	}
	// time may arrive as a JSON string or number
	if summaries[1].ReceivedAt.Unix() != 1756400060 {
		t.Errorf("Expected string timestamp parsed, got %v", summaries[1].ReceivedAt)
	}
}

func TestDownload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/incomingFax/fax-1/download" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("fileFormat") {
		case "tiff":
			w.Write([]byte("TIFFBYTES"))
		case "pdf":
			w.Write([]byte("%PDF-1.4"))
		default:
			t.Errorf("Unexpected fileFormat %q", r.URL.Query().Get("fileFormat"))
		}
	})
	c, _ := newTestClient(t, handler)

	blobs, err := c.Download(context.Background(), "fax-1")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(blobs.Raster, []byte("TIFFBYTES")) {
		t.Errorf("Unexpected raster bytes: %q", blobs.Raster)
	}
	if !bytes.Equal(blobs.Document, []byte("%PDF-1.4")) {
		t.Errorf("Unexpected document bytes: %q", blobs.Document)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error", http.StatusInternalServerError, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"not found", http.StatusNotFound, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			c, _ := newTestClient(t, handler)

			_, err := c.ListPending(context.Background())
			if err == nil {
				t.Fatalf("Expected error for status %d", tc.status)
			}
			var be *domain.BoundaryError
			if !errors.As(err, &be) {
				t.Fatalf("Expected BoundaryError, got %v", err)
			}
			if be.Transient != tc.transient {
				t.Errorf("Expected transient=%v for status %d, got %v", tc.transient, tc.status, be.Transient)
			}
		})
	}
}
