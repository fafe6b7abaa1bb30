package core

import "testing"

func TestPageQuery_Clean(t *testing.T) {
	tests := []struct {
		name      string
		pq        PageQuery
		wantPage  int
		wantLimit int
	}{
		{"defaults", PageQuery{}, 1, defaultPageLimit},
		{"negative page", PageQuery{Page: -3, Limit: 10}, 1, 10},
		{"limit over max", PageQuery{Page: 2, Limit: 500}, 2, defaultPageLimit},
		{"in range", PageQuery{Page: 3, Limit: 25}, 3, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pq.Clean()
			if tt.pq.Page != tt.wantPage || tt.pq.Limit != tt.wantLimit {
				t.Errorf("Clean() = {%d %d}, want {%d %d}", tt.pq.Page, tt.pq.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPageQuery_Offset(t *testing.T) {
	pq := PageQuery{Page: 3, Limit: 20}
	if got := pq.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		limit     int
		wantPages int
	}{
		{"exact fit", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := NewPagination(PageQuery{Page: 1, Limit: tt.limit}, tt.total)
			if pg.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", pg.Pages, tt.wantPages)
			}
			if pg.Total != tt.total {
				t.Errorf("Total = %d, want %d", pg.Total, tt.total)
			}
		})
	}
}
