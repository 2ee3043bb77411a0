package models

// Availability describes whether a technician is taking jobs
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

// Valid reports whether a is one of the known availability states
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return true
	}
	return false
}

// TechnicianRecord is a technician entry in a device-local catalog.
// Rating, ReviewCount and JobsCompleted are system managed: they start at zero
// and are never taken from a form.
type TechnicianRecord struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Skill           string       `json:"skill"`
	Phone           string       `json:"phone"`
	Location        string       `json:"location"`
	ExperienceYears int          `json:"experienceYears"`
	Bio             string       `json:"bio"`
	HourlyRate      float64      `json:"hourlyRate"`
	Availability    Availability `json:"availability"`
	Rating          float64      `json:"rating"`
	ReviewCount     int          `json:"reviewCount"`
	JobsCompleted   int          `json:"jobsCompleted"`
	Gallery         []string     `json:"gallery"`
}

// TechnicianForm holds the user-editable fields of a TechnicianRecord
type TechnicianForm struct {
	Name            string       `json:"name" binding:"required"`
	Skill           string       `json:"skill" binding:"required"`
	Phone           string       `json:"phone" binding:"required"`
	Location        string       `json:"location" binding:"required"`
	ExperienceYears int          `json:"experienceYears" binding:"gte=0"`
	Bio             string       `json:"bio"`
	HourlyRate      float64      `json:"hourlyRate" binding:"gte=0"`
	Availability    Availability `json:"availability" binding:"required,oneof=available busy offline"`
	Gallery         []string     `json:"gallery"`
}

// ApplyForm overwrites the mutable fields of r with the form values,
// leaving the id and the system-managed counters untouched
func (r *TechnicianRecord) ApplyForm(f TechnicianForm) {
	r.Name = f.Name
	r.Skill = f.Skill
	r.Phone = f.Phone
	r.Location = f.Location
	r.ExperienceYears = f.ExperienceYears
	r.Bio = f.Bio
	r.HourlyRate = f.HourlyRate
	r.Availability = f.Availability
	r.Gallery = append([]string(nil), f.Gallery...)
}

func (r TechnicianRecord) ListingName() string        { return r.Name }
func (r TechnicianRecord) ListingSkills() []string    { return []string{r.Skill} }
func (r TechnicianRecord) ListingLocation() string    { return r.Location }
func (r TechnicianRecord) ListingRating() float64     { return r.Rating }
func (r TechnicianRecord) ListingExperience() int     { return r.ExperienceYears }
func (r TechnicianRecord) ListingHourlyRate() float64 { return r.HourlyRate }
