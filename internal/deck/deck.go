package deck

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Suit is one of the four playing card suits.
type Suit string

// Rank is a playing card rank, "2" through "10", "J", "Q", "K" or "A".
type Rank string

const (
	Spades   Suit = "♠"
	Clubs    Suit = "♣"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
)

// Suits in the fixed enumeration order used by New.
var Suits = []Suit{Spades, Clubs, Hearts, Diamonds}

// Ranks in ascending counting value.
var Ranks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Card is a single playing card with its counting value. Immutable once built.
type Card struct {
	Suit  Suit `json:"suit"`
	Rank  Rank `json:"rank"`
	Value int  `json:"value"`
}

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// Deck is an ordered sequence of cards.
type Deck []Card

// rankValue maps a rank to its counting value: face cards count J=11, Q=12,
// K=13, A=14; everything else counts as its number.
func rankValue(r Rank) int {
	switch r {
	case "A":
		return 14
	case "K":
		return 13
	case "Q":
		return 12
	case "J":
		return 11
	default:
		v, _ := strconv.Atoi(string(r))
		return v
	}
}

// New returns a full 52-card deck in deterministic order: suits in the order
// of Suits, ranks ascending within each suit.
func New() Deck {
	d := make(Deck, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			d = append(d, Card{Suit: s, Rank: r, Value: rankValue(r)})
		}
	}
	return d
}

// Shuffle returns a uniformly shuffled copy of d using the Fisher-Yates
// algorithm. The input deck is not modified.
func Shuffle(d Deck, rng *rand.Rand) Deck {
	shuffled := make(Deck, len(d))
	copy(shuffled, d)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// CutRange bounds how many cards are discarded from the top of a shuffled
// deck when building a session deck. Both bounds are inclusive.
type CutRange struct {
	Min int
	Max int
}

// Validate rejects ranges that could leave the session deck empty. Called at
// configuration time; session construction assumes a valid range.
func (r CutRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("cut range min must be >= 0, got %d", r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("cut range max (%d) must be >= min (%d)", r.Max, r.Min)
	}
	if r.Max > 51 {
		return fmt.Errorf("cut range max must be <= 51, got %d", r.Max)
	}
	return nil
}

// Cut discards a uniformly drawn prefix of d, between r.Min and r.Max cards
// long, and returns the remainder.
func Cut(d Deck, rng *rand.Rand, r CutRange) Deck {
	n := r.Min + rng.Intn(r.Max-r.Min+1)
	return d[n:]
}

// Sum returns the total counting value of the given cards.
func Sum(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	return total
}
