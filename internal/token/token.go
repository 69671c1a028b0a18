package token

// Token defines the in-app currency and how many units a number of pulls costs

type Token struct {
	Name       string // e.g. "Star Stone"
	PerDraw    int    // tokens per single pull, e.g. 160
	PerTenDraw int    // optional; if 0 -> equal to 10 * PerDraw
}

// TokensForDraws returns how many tokens are required for n pulls bought as one pack.
// Every full ten uses the ten-pull price when one is set.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 && n >= 10 {
		tens := n / 10
		rem := n % 10
		return tens*t.PerTenDraw + rem*t.PerDraw
	}
	return n * t.PerDraw
}
