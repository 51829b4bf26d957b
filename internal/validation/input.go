package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength       = 3
	MaxUsernameLength       = 30
	MinGigTitleLength       = 3
	MaxGigTitleLength       = 200
	MinGigDescriptionLength = 10
	MaxGigDescriptionLength = 5000
	MaxSkillLength          = 50
	MaxSkillsCount          = 50
	MaxBudget               = 100000000.0 // 100 миллионов
	MinStars                = 1
	MaxStars                = 5
	MinReviewLength         = 3
	MaxReviewLength         = 2000
	MinReasonLength         = 3
	MaxReasonLength         = 2000
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateGigTitle проверяет заголовок гига.
func ValidateGigTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("заголовок гига обязателен")
	}
	return ValidateLength("заголовок гига", strings.TrimSpace(title), MinGigTitleLength, MaxGigTitleLength)
}

// ValidateGigDescription проверяет описание гига.
func ValidateGigDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("описание гига обязательно")
	}
	return ValidateLength("описание гига", strings.TrimSpace(description), MinGigDescriptionLength, MaxGigDescriptionLength)
}

// ValidateBudget проверяет бюджет гига. Бюджет строго положителен.
func ValidateBudget(budget float64) error {
	if budget <= 0 {
		return fmt.Errorf("бюджет должен быть положительным")
	}
	if budget > MaxBudget {
		return fmt.Errorf("бюджет не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateBid проверяет сумму отклика исполнителя.
func ValidateBid(bid float64) error {
	if bid <= 0 {
		return fmt.Errorf("ставка должна быть положительной")
	}
	if bid > MaxBudget {
		return fmt.Errorf("ставка не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateDeadline проверяет, что дедлайн в будущем относительно now.
func ValidateDeadline(deadline, now time.Time) error {
	if deadline.IsZero() {
		return fmt.Errorf("дедлайн обязателен")
	}
	if !deadline.After(now) {
		return fmt.Errorf("дедлайн должен быть в будущем")
	}
	return nil
}

// ValidateSkills проверяет список навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}

		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}

		// Дубликаты без учёта регистра
		skillLower := strings.ToLower(skill)
		if seen[skillLower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[skillLower] = true
	}

	return nil
}

// ValidateStars проверяет, что оценка в диапазоне [1, 5].
func ValidateStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("оценка должна быть от %d до %d", MinStars, MaxStars)
	}
	return nil
}

// ValidateReview проверяет текст отзыва.
func ValidateReview(review string) error {
	if strings.TrimSpace(review) == "" {
		return fmt.Errorf("текст отзыва обязателен")
	}
	return ValidateLength("текст отзыва", strings.TrimSpace(review), MinReviewLength, MaxReviewLength)
}

// ValidateDisputeReason проверяет причину спора.
func ValidateDisputeReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина спора обязательна")
	}
	return ValidateLength("причина спора", strings.TrimSpace(reason), MinReasonLength, MaxReasonLength)
}
