package model

import "time"

type ProductivityStats struct {
	TotalTasksCreated     int            `json:"totalTasksCreated"`
	TotalTasksCompleted   int            `json:"totalTasksCompleted"`
	CurrentStreak         int            `json:"currentStreak"`
	LongestStreak         int            `json:"longestStreak"`
	CompletionByCategory  map[string]int `json:"completionByCategory"`
	CompletionByPriority  map[string]int `json:"completionByPriority"`
	AverageCompletionTime time.Duration  `json:"averageCompletionTime"`
}

// CompletionRate is completed/created, or 0 when nothing was created.
func (s ProductivityStats) CompletionRate() float64 {
	if s.TotalTasksCreated <= 0 {
		return 0
	}
	return float64(s.TotalTasksCompleted) / float64(s.TotalTasksCreated)
}

type Theme string

const (
	ThemeLight  Theme = "Light"
	ThemeDark   Theme = "Dark"
	ThemeSystem Theme = "System"
)

var Themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

type SortOrder string

const (
	SortDueDate      SortOrder = "Due Date"
	SortPriority     SortOrder = "Priority"
	SortCategory     SortOrder = "Category"
	SortCreatedDate  SortOrder = "Created Date"
	SortAlphabetical SortOrder = "Alphabetical"
)

var SortOrders = []SortOrder{SortDueDate, SortPriority, SortCategory, SortCreatedDate, SortAlphabetical}

type Preferences struct {
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	DefaultTaskPriority  Priority  `json:"defaultTaskPriority"`
	DefaultTaskCategory  Category  `json:"defaultTaskCategory"`
	Theme                Theme     `json:"theme"`
	SoundEnabled         bool      `json:"soundEnabled"`
	ShowCompletedTasks   bool      `json:"showCompletedTasks"`
	SortOrder            SortOrder `json:"sortOrder"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		NotificationsEnabled: true,
		DefaultTaskPriority:  PriorityMedium,
		DefaultTaskCategory:  CategoryPersonal,
		Theme:                ThemeSystem,
		SoundEnabled:         true,
		ShowCompletedTasks:   true,
		SortOrder:            SortDueDate,
	}
}

type UserProfile struct {
	UserID           string            `json:"userId"`
	Username         string            `json:"username"`
	Email            *string           `json:"email,omitempty"`
	ProfileCreatedAt time.Time         `json:"profileCreatedAt"`
	Preferences      Preferences       `json:"preferences"`
	Stats            ProductivityStats `json:"stats"`
}

func NewProfile(now time.Time) UserProfile {
	return UserProfile{
		UserID:           NewID(),
		Username:         "User",
		ProfileCreatedAt: now,
		Preferences:      DefaultPreferences(),
	}
}
