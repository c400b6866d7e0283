package engine

import (
	"strconv"
	"strings"
)

// ParseAttribute accepts the lowercase attribute name or its three-letter short form.
func ParseAttribute(input string) (Attribute, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "str":
		return AttributeStrength, nil
	case "int":
		return AttributeIntelligence, nil
	case "cha":
		return AttributeCharisma, nil
	case "dex":
		return AttributeDexterity, nil
	case "wis":
		return AttributeWisdom, nil
	case "con":
		return AttributeConstitution, nil
	}
	a := Attribute(s)
	if !a.IsValid() {
		return "", ValidationError{Field: "attribute", Reason: "unknown attribute " + strconv.Quote(input)}
	}
	return a, nil
}

// ParseCharacterClass is case-insensitive: "mage" and "Mage" both parse.
func ParseCharacterClass(input string) (CharacterClass, error) {
	s := strings.TrimSpace(input)
	for _, c := range []CharacterClass{ClassWarrior, ClassMage, ClassBard, ClassRogue} {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ValidationError{Field: "character_class", Reason: "unknown class " + strconv.Quote(input)}
}

func ParseHabitType(input string) (HabitType, error) {
	s := strings.TrimSpace(input)
	for _, h := range []HabitType{HabitBoolean, HabitCounter} {
		if strings.EqualFold(s, string(h)) {
			return h, nil
		}
	}
	return "", ValidationError{Field: "habit_type", Reason: "unknown habit type " + strconv.Quote(input)}
}

func ParseQuestType(input string) (QuestType, error) {
	s := strings.TrimSpace(input)
	for _, q := range []QuestType{QuestTask, QuestHabit, QuestCharacter} {
		if strings.EqualFold(s, string(q)) {
			return q, nil
		}
	}
	return "", ValidationError{Field: "quest_type", Reason: "unknown quest type " + strconv.Quote(input)}
}

func ParseQuestStatus(input string) (QuestStatus, error) {
	s := strings.TrimSpace(input)
	for _, q := range []QuestStatus{QuestActive, QuestCompleted, QuestExpired} {
		if strings.EqualFold(s, string(q)) {
			return q, nil
		}
	}
	return "", ValidationError{Field: "status", Reason: "unknown quest status " + strconv.Quote(input)}
}

func ParseAchievementType(input string) (AchievementType, error) {
	s := strings.TrimSpace(input)
	for _, a := range []AchievementType{AchievementHabitStreak, AchievementTaskCount, AchievementCharacterLevel, AchievementQuestCount} {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", ValidationError{Field: "achievement_type", Reason: "unknown achievement type " + strconv.Quote(input)}
}

func ParseAchievementStatus(input string) (AchievementStatus, error) {
	s := strings.TrimSpace(input)
	for _, a := range []AchievementStatus{AchievementLocked, AchievementAvailable, AchievementEarned} {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", ValidationError{Field: "status", Reason: "unknown achievement status " + strconv.Quote(input)}
}
