package knowledge

import "sort"

// Resolve collapses a character's fact history into the state visible at
// position at. Facts positioned after at are ignored, so callers may pass a
// full history. For each item the fact with the greatest position wins; at
// equal positions the later entry in facts wins.
//
// A character with no facts resolves to four empty buckets. Items that were
// never recorded are simply absent and callers treat them as unaware.
func Resolve(characterID int64, at StoryPosition, facts []Fact) *EffectiveState {
	latest := make(map[string]Fact, len(facts))
	for _, f := range facts {
		if !f.StoryPosition.AtOrBefore(at) {
			continue
		}
		cur, ok := latest[f.KnowledgeItem]
		if !ok || cur.StoryPosition.Compare(f.StoryPosition) <= 0 {
			latest[f.KnowledgeItem] = f
		}
	}

	items := make([]string, 0, len(latest))
	for item := range latest {
		items = append(items, item)
	}
	sort.Strings(items)

	state := &EffectiveState{
		CharacterID: characterID,
		AtChapter:   at.ChapterID,
		Position:    at,
		Confirmed:   []Fact{},
		Suspected:   []Fact{},
		Unaware:     []Fact{},
		MemoryGaps:  []Fact{},
	}
	for _, item := range items {
		f := latest[item]
		switch f.State {
		case StateKnows, StateKnowsWithProtection:
			state.Confirmed = append(state.Confirmed, f)
		case StateSuspects:
			state.Suspected = append(state.Suspected, f)
		case StateUnaware:
			state.Unaware = append(state.Unaware, f)
		case StateMemoryGap:
			state.MemoryGaps = append(state.MemoryGaps, f)
		}
	}
	return state
}
