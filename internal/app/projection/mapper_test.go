package projection

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestMap_FieldFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		after    bson.M
		wantName string
		wantURL  string
	}{
		{
			name:     "canonical fields",
			after:    bson.M{"name": "Springfield Chamber", "website": "https://springfield.org"},
			wantName: "Springfield Chamber",
			wantURL:  "https://springfield.org",
		},
		{
			name:     "legacy org_name only",
			after:    bson.M{"org_name": "Shelbyville Chamber"},
			wantName: "Shelbyville Chamber",
			wantURL:  "",
		},
		{
			name:     "name wins over org_name",
			after:    bson.M{"name": "New Name", "org_name": "Old Name"},
			wantName: "New Name",
		},
		{
			name:     "legacy websiteUrl spelling",
			after:    bson.M{"name": "X", "websiteUrl": "https://x.example"},
			wantName: "X",
			wantURL:  "https://x.example",
		},
		{
			name:     "no name at all",
			after:    bson.M{"region": "Nowhere"},
			wantName: "Unnamed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.after)
			if got.Name != tt.wantName {
				t.Errorf("Name: got %q, want %q", got.Name, tt.wantName)
			}
			if got.WebsiteURL != tt.wantURL {
				t.Errorf("WebsiteURL: got %q, want %q", got.WebsiteURL, tt.wantURL)
			}
		})
	}
}

func TestMap_IndustryTags(t *testing.T) {
	got := Map(bson.M{"name": "X", "industry_tags": bson.A{"retail", "food"}})
	if !reflect.DeepEqual(got.IndustryTags, []string{"retail", "food"}) {
		t.Errorf("IndustryTags: got %v", got.IndustryTags)
	}

	got = Map(bson.M{"name": "X"})
	if got.IndustryTags == nil || len(got.IndustryTags) != 0 {
		t.Errorf("missing tags should map to empty slice, got %v", got.IndustryTags)
	}
}

func TestMap_Deterministic(t *testing.T) {
	after := bson.M{"org_name": "Det Chamber", "region": "North", "website": "https://det.example"}
	a := Map(after)
	b := Map(after)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("mapping the same snapshot twice differed: %+v vs %+v", a, b)
	}
}
