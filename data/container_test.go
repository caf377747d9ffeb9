package data

import (
	"sync"
	"testing"
	"time"

	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

func TestNewContainerIsEmptyButUsable(t *testing.T) {
	c := NewContainer()

	snap := c.GetSnapshot()
	if snap == nil {
		t.Fatal("new container must never return a nil snapshot")
	}
	if len(snap.Terms) != 0 {
		t.Errorf("expected empty terms, got %d", len(snap.Terms))
	}

	if !c.GetLastUpdated().IsZero() {
		t.Error("last updated should be zero before the first reload")
	}
	if c.IsUpdating() {
		t.Error("new container should not be updating")
	}
}

func TestUpdateSnapshot(t *testing.T) {
	c := NewContainer()

	terms := []entities.Term{{ID: "100", Code: "100", Name: "Carcinoma"}}
	c.UpdateSnapshot(search.NewSnapshot(terms, nil))

	snap := c.GetSnapshot()
	if len(snap.Terms) != 1 || snap.Terms[0].ID != "100" {
		t.Errorf("unexpected snapshot contents: %+v", snap.Terms)
	}
	if _, ok := snap.Term("100"); !ok {
		t.Error("term lookup should work after publish")
	}

	if c.GetLastUpdated().IsZero() {
		t.Error("last updated should be set after publish")
	}
}

func TestBeginUpdateIsExclusive(t *testing.T) {
	c := NewContainer()

	if !c.BeginUpdate() {
		t.Fatal("first BeginUpdate should succeed")
	}
	if c.BeginUpdate() {
		t.Error("second BeginUpdate should fail while one is running")
	}
	if !c.IsUpdating() {
		t.Error("IsUpdating should be true between Begin and End")
	}

	c.EndUpdate()
	if c.IsUpdating() {
		t.Error("IsUpdating should be false after EndUpdate")
	}
	if !c.BeginUpdate() {
		t.Error("BeginUpdate should succeed again after EndUpdate")
	}
	c.EndUpdate()
}

func TestConcurrentReadersDuringSwap(t *testing.T) {
	c := NewContainer()

	old := search.NewSnapshot([]entities.Term{{ID: "old", Code: "old", Name: "old"}}, nil)
	next := search.NewSnapshot([]entities.Term{{ID: "new", Code: "new", Name: "new"}}, nil)
	c.UpdateSnapshot(old)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				snap := c.GetSnapshot()
				if snap != old && snap != next {
					t.Error("reader observed a snapshot that was never published")
					return
				}
				if len(snap.Terms) != 1 {
					t.Error("reader observed a half-built snapshot")
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			c.UpdateSnapshot(next)
		} else {
			c.UpdateSnapshot(old)
		}
	}

	close(stop)
	wg.Wait()
}

func TestServerStartTime(t *testing.T) {
	c := NewContainer()

	if !c.GetServerStartTime().IsZero() {
		t.Error("start time should be zero initially")
	}

	now := time.Now()
	c.SetServerStartTime(now)
	if !c.GetServerStartTime().Equal(now) {
		t.Error("start time should round-trip")
	}
}
