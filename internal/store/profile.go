package store

import (
	"context"
	"errors"
)

// GetProfile returns the stored profile and whether one exists. When none
// exists the empty skeleton is returned.
func (s *Store) GetProfile(ctx context.Context) (Profile, bool, error) {
	var p Profile
	err := s.getJSON(ctx, KeyProfile, &p)
	if errors.Is(err, ErrNotFound) {
		return EmptyProfile(), false, nil
	}
	if err != nil {
		return Profile{}, false, err
	}
	normalizeProfile(&p)
	return p, true, nil
}

// UpdateProfile applies fn to the stored profile (or the skeleton) and
// persists the result. The updated profile is returned.
func (s *Store) UpdateProfile(ctx context.Context, fn func(p *Profile)) (Profile, error) {
	var out Profile
	err := updateJSON(ctx, s.backend, KeyProfile, &out, func(p *Profile, exists bool) error {
		if !exists {
			*p = EmptyProfile()
		}
		normalizeProfile(p)
		fn(p)
		return nil
	})
	return out, err
}

// normalizeProfile guarantees the single race and injury slots the form edits.
func normalizeProfile(p *Profile) {
	if len(p.Goals.Races) == 0 {
		p.Goals.Races = []Race{{}}
	}
	if len(p.Injuries) == 0 {
		p.Injuries = []Injury{{}}
	}
	if p.Constraints == nil {
		p.Constraints = map[string]string{}
	}
}
