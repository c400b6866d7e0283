package engine

// Attribute is one of the six character stats.
type Attribute string

const (
	AttributeStrength     Attribute = "strength"
	AttributeIntelligence Attribute = "intelligence"
	AttributeCharisma     Attribute = "charisma"
	AttributeDexterity    Attribute = "dexterity"
	AttributeWisdom       Attribute = "wisdom"
	AttributeConstitution Attribute = "constitution"
)

// Attributes lists every attribute in classification priority order.
var Attributes = []Attribute{
	AttributeStrength,
	AttributeIntelligence,
	AttributeCharisma,
	AttributeDexterity,
	AttributeWisdom,
	AttributeConstitution,
}

func (a Attribute) IsValid() bool {
	switch a {
	case AttributeStrength, AttributeIntelligence, AttributeCharisma,
		AttributeDexterity, AttributeWisdom, AttributeConstitution:
		return true
	default:
		return false
	}
}

type CharacterClass string

const (
	ClassWarrior CharacterClass = "Warrior"
	ClassMage    CharacterClass = "Mage"
	ClassBard    CharacterClass = "Bard"
	ClassRogue   CharacterClass = "Rogue"
)

// DefaultClass is used when the character is created implicitly.
const DefaultClass CharacterClass = ClassWarrior

func (c CharacterClass) IsValid() bool {
	switch c {
	case ClassWarrior, ClassMage, ClassBard, ClassRogue:
		return true
	default:
		return false
	}
}

type HabitType string

const (
	HabitBoolean HabitType = "Boolean"
	HabitCounter HabitType = "Counter"
)

func (h HabitType) IsValid() bool {
	return h == HabitBoolean || h == HabitCounter
}

type QuestType string

const (
	QuestTask      QuestType = "Task"
	QuestHabit     QuestType = "Habit"
	QuestCharacter QuestType = "Character"
)

func (q QuestType) IsValid() bool {
	switch q {
	case QuestTask, QuestHabit, QuestCharacter:
		return true
	default:
		return false
	}
}

type QuestStatus string

const (
	QuestActive    QuestStatus = "Active"
	QuestCompleted QuestStatus = "Completed"
	QuestExpired   QuestStatus = "Expired"
)

func (q QuestStatus) IsValid() bool {
	switch q {
	case QuestActive, QuestCompleted, QuestExpired:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a quest may move from q to next.
// Completed and Expired are terminal.
func (q QuestStatus) CanTransition(next QuestStatus) bool {
	return q == QuestActive && (next == QuestCompleted || next == QuestExpired)
}

type AchievementType string

const (
	AchievementHabitStreak    AchievementType = "HabitStreak"
	AchievementTaskCount      AchievementType = "TaskCount"
	AchievementCharacterLevel AchievementType = "CharacterLevel"
	AchievementQuestCount     AchievementType = "QuestCount"
)

func (a AchievementType) IsValid() bool {
	switch a {
	case AchievementHabitStreak, AchievementTaskCount, AchievementCharacterLevel, AchievementQuestCount:
		return true
	default:
		return false
	}
}

type AchievementStatus string

const (
	AchievementLocked    AchievementStatus = "Locked"
	AchievementAvailable AchievementStatus = "Available"
	AchievementEarned    AchievementStatus = "Earned"
)

func (a AchievementStatus) IsValid() bool {
	switch a {
	case AchievementLocked, AchievementAvailable, AchievementEarned:
		return true
	default:
		return false
	}
}

// CanTransition enforces Locked -> Available -> Earned.
func (a AchievementStatus) CanTransition(next AchievementStatus) bool {
	switch a {
	case AchievementLocked:
		return next == AchievementAvailable
	case AchievementAvailable:
		return next == AchievementEarned
	default:
		return false
	}
}
