package models

import "fmt"

// Coin is a collectible placed at an integer tile position. The id is
// derived from the position so a retried claim for the same coin resolves
// to the same id and stays idempotent.
type Coin struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

func CoinID(x, y int) string {
	return fmt.Sprintf("coin_%d_%d", x, y)
}

func NewCoin(x, y int) Coin {
	return Coin{ID: CoinID(x, y), X: x, Y: y}
}

// defaultCoinLayout matches the coin placements of the default tilemap.
var defaultCoinLayout = []Coin{
	NewCoin(150, 400),
	NewCoin(250, 400),
	NewCoin(350, 400),
	NewCoin(450, 350),
	NewCoin(550, 300),
	NewCoin(650, 300),
	NewCoin(750, 250),
	NewCoin(850, 250),
	NewCoin(950, 200),
	NewCoin(1050, 200),
	NewCoin(1150, 150),
	NewCoin(1250, 150),
}

// DefaultCoinLayout returns a copy of the default placements.
func DefaultCoinLayout() []Coin {
	out := make([]Coin, len(defaultCoinLayout))
	copy(out, defaultCoinLayout)
	return out
}
