package utils

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// MaxSlugAttempts ограничивает поиск свободного суффикса в UniqueSlug
const MaxSlugAttempts = 100

// Slugify превращает название в URL-slug ("Software Engineering" -> "software-engineering").
// Не-латинские символы транслитерируются.
func Slugify(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// UniqueSlug возвращает base, если он свободен, иначе base-2, base-3 и т.д.
func UniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		return "", fmt.Errorf("empty slug")
	}

	candidate := base
	for i := 2; i <= MaxSlugAttempts+1; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, MaxSlugAttempts)
}
