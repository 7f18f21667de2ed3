package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	pinRegex   = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePIN checks a child sign-in PIN: 4-6 digits, nothing else.
func ValidatePIN(pin string) error {
	if pin == "" {
		return fmt.Errorf("PIN is required")
	}
	if !pinRegex.MatchString(pin) {
		return fmt.Errorf("PIN must be 4-6 digits")
	}
	return nil
}

// ValidatePositiveAmount checks that a gold amount is positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateNonNegativeAmount checks that a gold or XP amount is not negative.
func ValidateNonNegativeAmount(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative, got %d", amount)
	}
	return nil
}

// ValidateThresholdPlacement checks that writing t keeps the threshold
// table strictly increasing: the requirement must be above every defined
// lower level and below every defined higher level. A row for t's own level
// in existing is the one being replaced and is ignored.
func ValidateThresholdPlacement(existing []LevelThreshold, t LevelThreshold) error {
	for _, e := range existing {
		if e.Level == t.Level {
			continue
		}
		if e.Level < t.Level && e.ExperienceRequired >= t.ExperienceRequired {
			return fmt.Errorf("experience_required must be greater than %d (level %d)",
				e.ExperienceRequired, e.Level)
		}
		if e.Level > t.Level && e.ExperienceRequired <= t.ExperienceRequired {
			return fmt.Errorf("experience_required must be less than %d (level %d)",
				e.ExperienceRequired, e.Level)
		}
	}
	return nil
}

// ValidateTitle checks a quest or treasure title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 120 {
		return fmt.Errorf("title must be at most 120 characters")
	}
	return nil
}

// ValidateCharacterName checks a character's display name.
func ValidateCharacterName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 60 {
		return fmt.Errorf("name must be at most 60 characters")
	}
	return nil
}
