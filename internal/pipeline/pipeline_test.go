package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/vantagedb/scout/internal/models"
)

func TestSortForDedup(t *testing.T) {
	official := &models.SourceRecord{ID: "official", Credibility: models.CredibilityOfficial,
		ScrapedDate: models.NewDate(2025, time.January, 1)}
	communityNew := &models.SourceRecord{ID: "community-new", Credibility: models.CredibilityCommunity,
		ScrapedDate: models.NewDate(2025, time.June, 1)}
	communityOld := &models.SourceRecord{ID: "community-old", Credibility: models.CredibilityCommunity,
		ScrapedDate: models.NewDate(2025, time.January, 1)}
	thirdParty := &models.SourceRecord{ID: "third", Credibility: models.CredibilityThirdParty,
		ScrapedDate: models.NewDate(2025, time.March, 1)}

	records := []*models.SourceRecord{communityOld, thirdParty, communityNew, official}
	sortForDedup(records)

	want := []string{"official", "third", "community-new", "community-old"}
	for i, w := range want {
		if records[i].ID != w {
			t.Fatalf("position %d = %s, want %s (order: %v)", i, records[i].ID, w, ids(records))
		}
	}
}

func TestSortForDedupStable(t *testing.T) {
	a := &models.SourceRecord{ID: "a", Credibility: models.CredibilityCommunity,
		ScrapedDate: models.NewDate(2025, time.January, 1)}
	b := &models.SourceRecord{ID: "b", Credibility: models.CredibilityCommunity,
		ScrapedDate: models.NewDate(2025, time.January, 1)}
	records := []*models.SourceRecord{a, b}
	sortForDedup(records)
	if records[0] != a || records[1] != b {
		t.Error("equal records must keep input order")
	}
}

func TestPipelineProcess(t *testing.T) {
	tagger, err := NewTagger("", map[string][]string{
		"replication": {"replication", "failover"},
	}, 3, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	filter := NewQualityFilter(20, 0.85, true)
	dedup, err := NewDeduplicator(0.7, 128)
	if err != nil {
		t.Fatal(err)
	}
	p := New(NewCleaner(), tagger, filter, dedup, nil)

	good := &models.SourceRecord{
		ID:          "good",
		Origin:      "acmedb",
		SourceType:  models.SourceBlog,
		URL:         "https://acmedb.io/blog/replication",
		Credibility: models.CredibilityOfficial,
		Text:        longText("replication failover"),
	}
	short := &models.SourceRecord{
		ID:         "short",
		Origin:     "acmedb",
		SourceType: models.SourceBlog,
		URL:        "https://acmedb.io/blog/short",
		Text:       "replication failover but far too short",
	}
	urlDup := &models.SourceRecord{
		ID:         "dup",
		Origin:     "acmedb",
		SourceType: models.SourceBlog,
		URL:        "https://acmedb.io/blog/replication/",
		Text:       longText("other replication failover words"),
	}

	kept, report := p.Process("acmedb", []*models.SourceRecord{good, short, urlDup})

	if report.RunID == "" {
		t.Error("run id missing")
	}
	if report.Target != "acmedb" {
		t.Errorf("target = %q", report.Target)
	}
	if report.Input != 3 {
		t.Errorf("input = %d", report.Input)
	}
	if len(kept) != 1 || kept[0].ID != "good" {
		t.Fatalf("kept = %v, want [good]", ids(kept))
	}
	if kept[0].Unclassified() {
		t.Error("surviving record should be tagged")
	}
	if report.Filter.Removed[ReasonTooShort] != 1 {
		t.Errorf("filter removals = %v", report.Filter.Removed)
	}
	if report.Dedup.RemovedURL != 1 {
		t.Errorf("dedup report = %+v", report.Dedup)
	}
	if report.Output != len(kept) {
		t.Errorf("output = %d, want %d", report.Output, len(kept))
	}
	// Word counts are recomputed by the cleaner.
	if kept[0].WordCount != len(strings.Fields(kept[0].Text)) {
		t.Error("word count not recomputed")
	}
}
