package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, target string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/", DefaultLimit, 0},
		{"explicit values", "/?limit=50&offset=10", 50, 10},
		{"limit capped", "/?limit=500", MaxLimit, 0},
		{"negative offset clamped", "/?offset=-5", DefaultLimit, 0},
		{"zero limit falls back", "/?limit=0", DefaultLimit, 0},
		{"garbage ignored", "/?limit=ten&offset=few", DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(t, tt.target)
			if p.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", p.Limit, tt.wantLimit)
			}
			if p.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", p.Offset, tt.wantOffset)
			}
		})
	}
}

func TestParams_HasNext(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		total  int
		want   bool
	}{
		{"more results", Params{Limit: 10, Offset: 0}, 25, true},
		{"exact end", Params{Limit: 10, Offset: 15}, 25, false},
		{"past end", Params{Limit: 10, Offset: 30}, 25, false},
		{"no results", Params{Limit: 10, Offset: 0}, 0, false},
		{"last partial page", Params{Limit: 10, Offset: 20}, 25, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.HasNext(tt.total); got != tt.want {
				t.Errorf("HasNext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	data := []string{"a", "b", "c"}

	r := NewResponse(data, 10, Params{Limit: 3, Offset: 0})
	if r.Total != 10 {
		t.Errorf("Total = %d, want 10", r.Total)
	}
	if r.Limit != 3 || r.Offset != 0 {
		t.Errorf("page = %d/%d, want 3/0", r.Limit, r.Offset)
	}
	if !r.HasMore {
		t.Error("has_more should be true while rows remain")
	}

	last := NewResponse(data, 3, Params{Limit: 3, Offset: 0})
	if last.HasMore {
		t.Error("has_more should be false on the final page")
	}
}
