package timeline

import "cuefm/model"

// BuildMapping derives, for each segment, the (sound, time) pairs whose
// schedule falls inside the segment's bounds. Entries are not deduplicated:
// a sound with several schedules in range appears once per schedule. The
// function is pure; with identical inputs the output is identical,
// including order (segments as given, then sounds, then each sound's
// schedules in document order).
func BuildMapping(segments []model.TimelineSegment, manifest *model.Manifest) model.Restrictions {
	mapping := make(model.Restrictions, len(segments))
	for _, seg := range segments {
		refs := []model.SoundRef{}
		for _, sound := range manifest.Sounds {
			for _, sch := range manifest.Schedules {
				if sch.SoundID != sound.ID {
					continue
				}
				if Contains(sch.Time, seg.StartTime, seg.EndTime) {
					refs = append(refs, model.SoundRef{SoundID: sound.ID, Time: NormalizeTime(sch.Time)})
				}
			}
		}
		mapping[seg.ID] = refs
	}
	return mapping
}
