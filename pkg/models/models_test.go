package models

import (
	"testing"
	"time"
)

func TestNewSalesRep(t *testing.T) {
	rep := NewSalesRep("Jane", "Doe", "Mary Kay", SourceLocator)

	if rep.ID == "" {
		t.Error("rep must get a derived ID")
	}
	if rep.FullName() != "Jane Doe" {
		t.Errorf("full name = %q", rep.FullName())
	}
	if rep.ScrapedAt == "" {
		t.Error("scraped at must be set")
	}
	if _, err := time.Parse(time.RFC3339, rep.ScrapedAt); err != nil {
		t.Errorf("scraped at %q is not RFC3339: %v", rep.ScrapedAt, err)
	}
}

func TestDeriveIDStable(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := DeriveID("Jane Doe", "Mary Kay", at)
	b := DeriveID("jane doe", "MARY KAY", at)
	if a != b {
		t.Error("id derivation must be case insensitive")
	}
	if len(a) != 16 {
		t.Errorf("id length = %d, want 16", len(a))
	}

	c := DeriveID("Jane Doe", "Mary Kay", at.Add(time.Nanosecond))
	if a == c {
		t.Error("different scrape times must give different ids")
	}
}

func TestDedupKey(t *testing.T) {
	rep := NewSalesRep("Jane", "Doe", "Mary Kay", SourceSearch)

	if rep.DedupKey() != rep.ID {
		t.Error("without an email the derived id is the key")
	}

	rep.Email = "Jane.Doe@Gmail.com"
	if rep.DedupKey() != "jane.doe@gmail.com" {
		t.Errorf("dedup key = %q, want lowercase email", rep.DedupKey())
	}
}

func TestSetSocialLinkFirstWins(t *testing.T) {
	rep := NewSalesRep("Jane", "Doe", "Avon", SourceSocial)

	rep.SetSocialLink("facebook", "https://facebook.com/first")
	rep.SetSocialLink("facebook", "https://facebook.com/second")

	if rep.SocialLinks["facebook"] != "https://facebook.com/first" {
		t.Errorf("facebook = %q, first write must win", rep.SocialLinks["facebook"])
	}
}

func TestWantsState(t *testing.T) {
	opts := ScrapeOptions{States: []string{"TX", "ok"}}

	if !opts.WantsState("TX") {
		t.Error("exact match should pass")
	}
	if !opts.WantsState("OK") {
		t.Error("match must be case insensitive")
	}
	if !opts.WantsState(" tx ") {
		t.Error("whitespace must be ignored")
	}
	if opts.WantsState("CA") {
		t.Error("unlisted state should be filtered")
	}

	open := ScrapeOptions{}
	if !open.WantsState("CA") {
		t.Error("no filter means every state passes")
	}
}

func TestScraperResultAddError(t *testing.T) {
	res := &ScraperResult{Company: "Avon"}

	res.AddError(nil)
	if len(res.Errors) != 0 {
		t.Error("nil errors must be ignored")
	}
}
