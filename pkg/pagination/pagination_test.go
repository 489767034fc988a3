package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=0", 1, 20, 0},
		{"?page=-2&limit=500", 1, 100, 0},
		{"?page=abc&limit=xyz", 1, 20, 0},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)

		got := Parse(c)
		if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
			t.Errorf("Parse(%q) = %+v, want page=%d limit=%d offset=%d", tt.query, got, tt.wantPage, tt.wantLimit, tt.wantOffset)
		}
	}
}
