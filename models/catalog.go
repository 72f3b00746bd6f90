// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Animal is one entry of the fixed animal catalog
type Animal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// Tier is a purchasable package with a fixed price
type Tier struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Emoji    string   `json:"emoji"`
	Popular  bool     `json:"popular,omitempty"`
}

var animals = []Animal{
	{ID: "dog", Name: "Dog", Emoji: "🐕", Description: "Man's best friend"},
	{ID: "cat", Name: "Cat", Emoji: "🐈", Description: "Purr-fect companion"},
	{ID: "rabbit", Name: "Rabbit", Emoji: "🐰", Description: "Fluffy and cute"},
	{ID: "hamster", Name: "Hamster", Emoji: "🐹", Description: "Tiny and adorable"},
	{ID: "bird", Name: "Bird", Emoji: "🦜", Description: "Colorful friend"},
	{ID: "fish", Name: "Fish", Emoji: "🐠", Description: "Swimming buddy"},
	{ID: "turtle", Name: "Turtle", Emoji: "🐢", Description: "Slow and steady"},
	{ID: "panda", Name: "Panda", Emoji: "🐼", Description: "Bamboo lover"},
	{ID: "koala", Name: "Koala", Emoji: "🐨", Description: "Sleepy cutie"},
	{ID: "lion", Name: "Lion", Emoji: "🦁", Description: "King of the jungle"},
	{ID: "tiger", Name: "Tiger", Emoji: "🐯", Description: "Fierce and majestic"},
	{ID: "bear", Name: "Bear", Emoji: "🐻", Description: "Cuddly giant"},
	{ID: "fox", Name: "Fox", Emoji: "🦊", Description: "Clever creature"},
	{ID: "wolf", Name: "Wolf", Emoji: "🐺", Description: "Wild and free"},
	{ID: "monkey", Name: "Monkey", Emoji: "🐵", Description: "Playful primate"},
	{ID: "penguin", Name: "Penguin", Emoji: "🐧", Description: "Formal friend"},
	{ID: "owl", Name: "Owl", Emoji: "🦉", Description: "Wise one"},
	{ID: "unicorn", Name: "Unicorn", Emoji: "🦄", Description: "Magical creature"},
}

var tiers = []Tier{
	{
		ID:    "digital",
		Name:  "Digital Download",
		Price: 9.99,
		Features: []string{
			"High-resolution digital file",
			"Instant download",
			"Perfect for social media",
			"Email delivery",
		},
		Emoji: "💾",
	},
	{
		ID:    "print",
		Name:  "Print + Digital",
		Price: 24.99,
		Features: []string{
			"Everything in Digital",
			"8x10 printed photo",
			"Premium quality paper",
			"Shipped to your door",
		},
		Emoji:   "🖼️",
		Popular: true,
	},
	{
		ID:    "premium",
		Name:  "Premium Package",
		Price: 49.99,
		Features: []string{
			"Everything in Print",
			"Multiple size options",
			"Framed photo",
			"Express shipping",
		},
		Emoji: "⭐",
	},
}

// DefaultTierID is the middle tier, preselected on the purchase step
const DefaultTierID = "print"

// Animals returns a copy of the animal catalog in display order
func Animals() []Animal {
	out := make([]Animal, len(animals))
	copy(out, animals)
	return out
}

// Tiers returns a copy of the pricing catalog in display order
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		t.Features = append([]string(nil), t.Features...)
		out[i] = t
	}
	return out
}

func FindAnimal(id string) (Animal, bool) {
	for _, a := range animals {
		if a.ID == id {
			return a, true
		}
	}
	return Animal{}, false
}

func FindTier(id string) (Tier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}
