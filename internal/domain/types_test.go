package domain

import "testing"

func TestPaginationNormalize(t *testing.T) {
	cases := []struct {
		in        Pagination
		wantPage  int
		wantLimit int
	}{
		{Pagination{Page: 0, Limit: 0}, 1, 10},
		{Pagination{Page: -3, Limit: -1}, 1, 10},
		{Pagination{Page: 2, Limit: 500}, 2, 100},
		{Pagination{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tc := range cases {
		p := tc.in
		p.Normalize()
		if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
			t.Fatalf("Normalize(%+v) = page %d limit %d, want %d/%d",
				tc.in, p.Page, p.Limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("Offset = %d, want 20", got)
	}
}

func TestPaginationSetTotal(t *testing.T) {
	cases := []struct {
		total     int
		limit     int
		wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tc := range cases {
		p := Pagination{Page: 1, Limit: tc.limit}
		p.SetTotal(tc.total)
		if p.Total != tc.total || p.TotalPages != tc.wantPages {
			t.Fatalf("SetTotal(%d) with limit %d = %d pages, want %d",
				tc.total, tc.limit, p.TotalPages, tc.wantPages)
		}
	}
}
