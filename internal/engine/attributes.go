package engine

import (
	"strings"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// StartingAttributeValue is every attribute's value on a fresh character.
const StartingAttributeValue = 10

// AttributeSet is the six stat counters.
type AttributeSet storage.Attributes

func DefaultAttributeSet() AttributeSet {
	return AttributeSet{
		Strength:     StartingAttributeValue,
		Intelligence: StartingAttributeValue,
		Charisma:     StartingAttributeValue,
		Dexterity:    StartingAttributeValue,
		Wisdom:       StartingAttributeValue,
		Constitution: StartingAttributeValue,
	}
}

// Get returns the value for attr, 0 for an invalid name.
func (s AttributeSet) Get(attr Attribute) int {
	switch attr {
	case AttributeStrength:
		return s.Strength
	case AttributeIntelligence:
		return s.Intelligence
	case AttributeCharisma:
		return s.Charisma
	case AttributeDexterity:
		return s.Dexterity
	case AttributeWisdom:
		return s.Wisdom
	case AttributeConstitution:
		return s.Constitution
	default:
		return 0
	}
}

// Add increments exactly the named counter. An invalid name leaves s unchanged and returns false.
func (s *AttributeSet) Add(attr Attribute, points int) bool {
	switch attr {
	case AttributeStrength:
		s.Strength += points
	case AttributeIntelligence:
		s.Intelligence += points
	case AttributeCharisma:
		s.Charisma += points
	case AttributeDexterity:
		s.Dexterity += points
	case AttributeWisdom:
		s.Wisdom += points
	case AttributeConstitution:
		s.Constitution += points
	default:
		return false
	}
	return true
}

// Keyword sets are checked in Attributes order; the first set with a
// substring match wins. Polish and English forms are both recognised.
var taskKeywords = map[Attribute][]string{
	AttributeStrength:     {"sport", "trening", "ćwiczenia", "fitness", "training", "exercise"},
	AttributeIntelligence: {"nauka", "książka", "kurs", "czytanie", "study", "book", "course", "reading"},
	AttributeCharisma:     {"prezentacja", "spotkanie", "kontakt", "rozmowa", "presentation", "meeting", "contact", "conversation"},
	AttributeDexterity:    {"hobby", "praktyka", "umiejętność", "projekt", "practice", "skill", "project"},
	AttributeWisdom:       {"medytacja", "refleksja", "mindfulness", "planowanie", "meditation", "reflection", "planning"},
	AttributeConstitution: {"sen", "dieta", "zdrowie", "nawyk", "sleep", "diet", "health", "habit"},
}

var habitKeywords = map[Attribute][]string{
	AttributeStrength:     {"sport", "trening", "ćwiczenia", "fitness", "training", "exercise"},
	AttributeIntelligence: {"nauka", "książka", "kurs", "czytanie", "study", "book", "course", "reading"},
	AttributeCharisma:     {"prezentacja", "spotkanie", "kontakt", "rozmowa", "presentation", "meeting", "contact", "conversation"},
	AttributeDexterity:    {"hobby", "praktyka", "umiejętność", "gra", "practice", "skill", "game"},
	AttributeWisdom:       {"medytacja", "refleksja", "mindfulness", "planowanie", "meditation", "reflection", "planning"},
	AttributeConstitution: {"sen", "dieta", "zdrowie", "woda", "sleep", "diet", "health", "water"},
}

// ClassifyTask maps a task title to an attribute. ok is false when nothing matches.
func ClassifyTask(title string) (Attribute, bool) {
	return classify(title, taskKeywords)
}

// ClassifyHabit is ClassifyTask with the habit keyword variants.
func ClassifyHabit(title string) (Attribute, bool) {
	return classify(title, habitKeywords)
}

func classify(text string, sets map[Attribute][]string) (Attribute, bool) {
	lower := strings.ToLower(text)
	for _, attr := range Attributes {
		for _, kw := range sets[attr] {
			if strings.Contains(lower, kw) {
				return attr, true
			}
		}
	}
	return "", false
}
