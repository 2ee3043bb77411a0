package store

import "github.com/kendall-kelly/technician-finder-api/models"

// Schema version tags, oldest first. A stored marker that differs from
// CurrentSchemaVersion triggers a re-seed.
var SchemaVersions = []string{"v1", "v2", "v3"}

// CurrentSchemaVersion is the marker written after seeding
var CurrentSchemaVersion = SchemaVersions[len(SchemaVersions)-1]

// SeedTechnicians returns a fresh copy of the catalog a new device starts with
func SeedTechnicians() []models.TechnicianRecord {
	return []models.TechnicianRecord{
		{
			ID: "seed-1", Name: "Jean-Paul Mbarga", Skill: "Plumber", Phone: "+237 677 12 34 56",
			Location: "Douala", ExperienceYears: 12, HourlyRate: 5000, Availability: models.AvailabilityAvailable,
			Bio:    "Leak repair, water heaters and bathroom installations.",
			Rating: 4.8, ReviewCount: 56, JobsCompleted: 210, Gallery: []string{},
		},
		{
			ID: "seed-2", Name: "Marie Ngo Bassa", Skill: "Electrician", Phone: "+237 699 45 67 89",
			Location: "Yaoundé", ExperienceYears: 8, HourlyRate: 4500, Availability: models.AvailabilityAvailable,
			Bio:    "Residential wiring, solar panels and meter installation.",
			Rating: 4.9, ReviewCount: 41, JobsCompleted: 150, Gallery: []string{},
		},
		{
			ID: "seed-3", Name: "Emmanuel Tabi", Skill: "Carpenter", Phone: "+237 674 22 11 09",
			Location: "Bamenda", ExperienceYears: 15, HourlyRate: 4000, Availability: models.AvailabilityBusy,
			Bio:    "Custom furniture, doors and roofing frames.",
			Rating: 4.7, ReviewCount: 33, JobsCompleted: 180, Gallery: []string{},
		},
		{
			ID: "seed-4", Name: "Ibrahim Oumarou", Skill: "Mason", Phone: "+237 655 78 90 12",
			Location: "Garoua", ExperienceYears: 20, HourlyRate: 3500, Availability: models.AvailabilityAvailable,
			Bio:    "Foundations, block work and tiling.",
			Rating: 4.6, ReviewCount: 27, JobsCompleted: 240, Gallery: []string{},
		},
		{
			ID: "seed-5", Name: "Solange Fotso", Skill: "Painter", Phone: "+237 690 33 44 55",
			Location: "Bafoussam", ExperienceYears: 6, HourlyRate: 3000, Availability: models.AvailabilityOffline,
			Bio:    "Interior and exterior painting, decorative finishes.",
			Rating: 4.5, ReviewCount: 19, JobsCompleted: 75, Gallery: []string{},
		},
		{
			ID: "seed-6", Name: "Samuel Ekane", Skill: "Plumber", Phone: "+237 670 98 76 54",
			Location: "Buea", ExperienceYears: 4, HourlyRate: 3500, Availability: models.AvailabilityAvailable,
			Bio:    "Pipe fitting and borehole pump maintenance.",
			Rating: 4.3, ReviewCount: 11, JobsCompleted: 40, Gallery: []string{},
		},
		{
			ID: "seed-7", Name: "Christelle Ndzana", Skill: "Electrician", Phone: "+237 696 12 00 87",
			Location: "Kribi", ExperienceYears: 10, HourlyRate: 5500, Availability: models.AvailabilityBusy,
			Bio:    "Industrial and hotel electrical maintenance.",
			Rating: 4.8, ReviewCount: 38, JobsCompleted: 160, Gallery: []string{},
		},
	}
}
