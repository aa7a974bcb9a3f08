package domain_test

import (
	"testing"

	"folio/internal/modules/viewport/domain"
)

func TestElectPicksGreatestRatio(t *testing.T) {
	t.Parallel()
	page, ok := domain.Elect([]domain.Observation{
		{PageIndex: 1, Ratio: 0.2, Intersecting: true},
		{PageIndex: 2, Ratio: 0.9, Intersecting: true},
		{PageIndex: 3, Ratio: 0.5, Intersecting: true},
	})
	if !ok || page != 2 {
		t.Fatalf("expected page 2 elected, got %d (ok=%v)", page, ok)
	}
}

func TestElectBreaksTiesBySmallestIndex(t *testing.T) {
	t.Parallel()
	page, ok := domain.Elect([]domain.Observation{
		{PageIndex: 7, Ratio: 0.5, Intersecting: true},
		{PageIndex: 4, Ratio: 0.5, Intersecting: true},
		{PageIndex: 9, Ratio: 0.5, Intersecting: true},
	})
	if !ok || page != 4 {
		t.Fatalf("expected tie broken to page 4, got %d (ok=%v)", page, ok)
	}
}

func TestElectIgnoresNonIntersecting(t *testing.T) {
	t.Parallel()
	page, ok := domain.Elect([]domain.Observation{
		{PageIndex: 1, Ratio: 0.9, Intersecting: false},
		{PageIndex: 2, Ratio: 0.1, Intersecting: true},
	})
	if !ok || page != 2 {
		t.Fatalf("expected page 2, got %d (ok=%v)", page, ok)
	}
	if _, ok := domain.Elect([]domain.Observation{{PageIndex: 1, Ratio: 1, Intersecting: false}}); ok {
		t.Fatalf("no intersecting observation must elect nothing")
	}
	if _, ok := domain.Elect(nil); ok {
		t.Fatalf("empty batch must elect nothing")
	}
}
