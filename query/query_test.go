package query

import (
	"math"
	"testing"

	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func sampleRecords() []models.TechnicianRecord {
	return []models.TechnicianRecord{
		{ID: "1", Name: "Jean", Skill: "Plumber", Location: "Douala", Rating: 4.8, ExperienceYears: 10, HourlyRate: 5000},
		{ID: "2", Name: "Marie", Skill: "Electrician", Location: "Yaoundé", Rating: 4.9, ExperienceYears: 6, HourlyRate: 3000},
		{ID: "3", Name: "Paul Acme", Skill: "Plumber", Location: "Yaoundé", Rating: 4.8, ExperienceYears: 10, HourlyRate: 4000},
		{ID: "4", Name: "Aïcha", Skill: "Painter", Location: "Douala", Rating: 0, ExperienceYears: 2, HourlyRate: 3000},
	}
}

func ids(records []models.TechnicianRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestCompose_ScenarioA_SkillFilter(t *testing.T) {
	records := []models.TechnicianRecord{
		{ID: "jean", Name: "Jean", Skill: "Plumber", Rating: 4.8},
		{ID: "marie", Name: "Marie", Skill: "Electrician", Rating: 4.9},
	}

	got := Compose(records, Criteria{Skill: "Plumber"})
	assert.Equal(t, []string{"jean"}, ids(got))
}

func TestCompose_ScenarioB_PriceLow(t *testing.T) {
	records := []models.TechnicianRecord{
		{ID: "jean", Name: "Jean", Skill: "Plumber", Rating: 4.8, HourlyRate: 5000},
		{ID: "marie", Name: "Marie", Skill: "Electrician", Rating: 4.9, HourlyRate: 3000},
	}

	got := Compose(records, Criteria{Sort: SortPriceLow})
	assert.Equal(t, []string{"marie", "jean"}, ids(got))
}

func TestCompose_Sorts(t *testing.T) {
	tests := []struct {
		name string
		sort SortOption
		want []string
	}{
		{"no sort keeps input order", SortNone, []string{"1", "2", "3", "4"}},
		{"rating descending, ties keep order", SortRating, []string{"2", "1", "3", "4"}},
		{"experience descending, ties keep order", SortExperience, []string{"1", "3", "2", "4"}},
		{"price ascending, ties keep order", SortPriceLow, []string{"2", "4", "3", "1"}},
		{"price descending, ties keep order", SortPriceHigh, []string{"1", "3", "2", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(sampleRecords(), Criteria{Sort: tt.sort})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCompose_FilterIdempotent(t *testing.T) {
	c := Criteria{SearchText: "ou", Location: "Douala", Sort: SortRating}

	once := Compose(sampleRecords(), c)
	twice := Compose(once, c)
	assert.Equal(t, once, twice)
}

func TestCompose_SearchIsCaseInsensitive(t *testing.T) {
	upper := Compose(sampleRecords(), Criteria{SearchText: "ACME"})
	lower := Compose(sampleRecords(), Criteria{SearchText: "acme"})

	assert.Equal(t, []string{"3"}, ids(upper))
	assert.Equal(t, upper, lower)
}

func TestCompose_SearchMatchesSkillAndLocation(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Compose(sampleRecords(), Criteria{SearchText: "plumb"})))
	assert.Equal(t, []string{"2", "3"}, ids(Compose(sampleRecords(), Criteria{SearchText: "yaoundé"})))
	assert.Empty(t, Compose(sampleRecords(), Criteria{SearchText: "carpenter"}))
}

func TestCompose_BlankSearchIsIdentity(t *testing.T) {
	for _, search := range []string{"", "   ", "\t"} {
		got := Compose(sampleRecords(), Criteria{SearchText: search, Location: "Yaoundé"})
		assert.Equal(t, []string{"2", "3"}, ids(got), "search %q", search)
	}
	assert.Equal(t, sampleRecords(), Compose(sampleRecords(), Criteria{SearchText: "  "}))
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)

	got := Compose(records, Criteria{Sort: SortPriceHigh})
	assert.Equal(t, before, ids(records))

	got[0].Name = "changed"
	assert.NotEqual(t, "changed", records[0].Name)
}

func TestCompose_EmptyInput(t *testing.T) {
	got := Compose([]models.TechnicianRecord(nil), Criteria{Sort: SortRating})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompose_NaNRanksAsZero(t *testing.T) {
	records := []models.TechnicianRecord{
		{ID: "nan", Rating: math.NaN()},
		{ID: "low", Rating: 0.5},
		{ID: "zero", Rating: 0},
	}

	got := Compose(records, Criteria{Sort: SortRating})
	assert.Equal(t, []string{"low", "nan", "zero"}, ids(got))
}

func TestCompose_ListingsMatchAnySkill(t *testing.T) {
	listings := []models.TechnicianListing{
		{TechnicianProfile: models.TechnicianProfile{ID: "a", Skills: datatypes.JSONSlice[string]{"Mason", "Painter"}}, Name: "Ali", Location: "Buea"},
		{TechnicianProfile: models.TechnicianProfile{ID: "b", Skills: datatypes.JSONSlice[string]{"Plumber"}}, Name: "Bea", Location: "Buea"},
	}

	got := Compose(listings, Criteria{Skill: "Painter"})
	if assert.Len(t, got, 1) {
		assert.Equal(t, "a", got[0].ID)
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortRating, ParseSort("rating"))
	assert.Equal(t, SortExperience, ParseSort(" experience "))
	assert.Equal(t, SortPriceLow, ParseSort("price_low"))
	assert.Equal(t, SortPriceHigh, ParseSort("price_high"))
	assert.Equal(t, SortNone, ParseSort("cheapest"))
	assert.Equal(t, SortNone, ParseSort(""))
}
