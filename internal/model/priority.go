package model

import (
	"fmt"
	"strings"
)

type Priority string

const (
	PriorityImportant    Priority = "important"
	PriorityNormal       Priority = "normal"
	PriorityQuestionable Priority = "questionable"
)

// Priorities returns every priority in display order (highest first).
func Priorities() []Priority {
	return []Priority{PriorityImportant, PriorityNormal, PriorityQuestionable}
}

// Rank orders priorities: Important > Normal > Questionable.
// The empty value ranks as Normal; unknown values rank below everything.
func (p Priority) Rank() int {
	switch p {
	case PriorityImportant:
		return 2
	case PriorityNormal, "":
		return 1
	case PriorityQuestionable:
		return 0
	default:
		return -1
	}
}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// OrDefault maps the empty value to Normal.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}

func (p Priority) Label() string {
	switch p.OrDefault() {
	case PriorityImportant:
		return "Important"
	case PriorityNormal:
		return "Normal"
	case PriorityQuestionable:
		return "Questionable"
	default:
		return string(p)
	}
}

// MaxPriority returns the higher of a and b.
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b.OrDefault()
	}
	return a.OrDefault()
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "important", "high", "!":
		return PriorityImportant, nil
	case "normal", "", "default":
		return PriorityNormal, nil
	case "questionable", "low", "?":
		return PriorityQuestionable, nil
	default:
		return "", fmt.Errorf("priority %q: %w", s, ErrUnsupportedValue)
	}
}

type HighlightingType string

const (
	HighlightRed    HighlightingType = "red"
	HighlightYellow HighlightingType = "yellow"
	HighlightGreen  HighlightingType = "green"
)

func HighlightingTypes() []HighlightingType {
	return []HighlightingType{HighlightRed, HighlightYellow, HighlightGreen}
}

func (h HighlightingType) Valid() bool {
	switch h {
	case HighlightRed, HighlightYellow, HighlightGreen, "":
		return true
	default:
		return false
	}
}

// OrDefault maps the empty value to Red.
func (h HighlightingType) OrDefault() HighlightingType {
	if h == "" {
		return HighlightRed
	}
	return h
}

// Next cycles red -> yellow -> green -> red.
func (h HighlightingType) Next() HighlightingType {
	switch h.OrDefault() {
	case HighlightRed:
		return HighlightYellow
	case HighlightYellow:
		return HighlightGreen
	default:
		return HighlightRed
	}
}

func ParseHighlightingType(s string) (HighlightingType, error) {
	h := HighlightingType(strings.ToLower(strings.TrimSpace(s)))
	if !h.Valid() {
		return "", fmt.Errorf("highlighting type %q: %w", s, ErrUnsupportedValue)
	}
	return h.OrDefault(), nil
}
