package service

import (
	"context"
	"fmt"
	"net/url"

	"cadence/internal/store"
)

// IndoorOKPresent is the hidden marker the profile form always submits so
// an unchecked indoor_ok box can be told apart from a form without it
const IndoorOKPresent = "indoor_ok_present"

// profileFields maps form field names onto profile leaves
var profileFields = []struct {
	name string
	leaf func(p *store.Profile) **string
}{
	{"name", func(p *store.Profile) **string { return &p.Identity.Name }},
	{"dob", func(p *store.Profile) **string { return &p.Identity.DOB }},
	{"sex", func(p *store.Profile) **string { return &p.Identity.Sex }},
	{"timezone", func(p *store.Profile) **string { return &p.Identity.Timezone }},
	{"locale", func(p *store.Profile) **string { return &p.Identity.Locale }},
	{"height_cm", func(p *store.Profile) **string { return &p.Anthropometrics.HeightCm }},
	{"weight_kg", func(p *store.Profile) **string { return &p.Anthropometrics.WeightKg }},
	{"bodyfat_percent", func(p *store.Profile) **string { return &p.Anthropometrics.BodyfatPercent }},
	{"race_name", func(p *store.Profile) **string { return &p.Goals.Races[0].Name }},
	{"race_date", func(p *store.Profile) **string { return &p.Goals.Races[0].Date }},
	{"race_priority", func(p *store.Profile) **string { return &p.Goals.Races[0].Priority }},
	{"methodology", func(p *store.Profile) **string { return &p.Goals.Methodology }},
	{"run_pace", func(p *store.Profile) **string { return &p.Thresholds.Run.ThresholdPace }},
	{"run_hr", func(p *store.Profile) **string { return &p.Thresholds.Run.ThresholdHR }},
	{"bike_ftp", func(p *store.Profile) **string { return &p.Thresholds.Bike.FTP }},
	{"bike_wkg", func(p *store.Profile) **string { return &p.Thresholds.Bike.WKg }},
	{"swim_css", func(p *store.Profile) **string { return &p.Thresholds.Swim.CSS }},
	{"injury_area", func(p *store.Profile) **string { return &p.Injuries[0].Area }},
	{"injury_status", func(p *store.Profile) **string { return &p.Injuries[0].Status }},
	{"diet", func(p *store.Profile) **string { return &p.Nutrition.Diet }},
	{"restrictions", func(p *store.Profile) **string { return &p.Nutrition.Restrictions }},
	{"bike", func(p *store.Profile) **string { return &p.Equipment.Bike }},
	{"sensors", func(p *store.Profile) **string { return &p.Equipment.Sensors }},
}

// ProfileFieldNames lists every form field the profile form can submit
func ProfileFieldNames() []string {
	names := make([]string, 0, len(profileFields))
	for _, f := range profileFields {
		names = append(names, f.name)
	}
	return names
}

// Profiles edits the athlete profile document
type Profiles struct {
	store *store.Store
}

func NewProfiles(s *store.Store) *Profiles {
	return &Profiles{store: s}
}

// Get returns the stored profile, or the empty skeleton without saving it
func (p *Profiles) Get(ctx context.Context) (store.Profile, error) {
	profile, _, err := p.store.GetProfile(ctx)
	if err != nil {
		return store.Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	return profile, nil
}

// ApplyForm overwrites only the fields present in form and keeps every
// other stored value
func (p *Profiles) ApplyForm(ctx context.Context, form url.Values) (store.Profile, error) {
	profile, err := p.store.UpdateProfile(ctx, func(profile *store.Profile) {
		for _, f := range profileFields {
			if _, ok := form[f.name]; !ok {
				continue
			}
			v := form.Get(f.name)
			*f.leaf(profile) = &v
		}
		if _, ok := form[IndoorOKPresent]; ok {
			_, checked := form["indoor_ok"]
			profile.Goals.Preferences.IndoorOK = &checked
		}
	})
	if err != nil {
		return store.Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	return profile, nil
}
