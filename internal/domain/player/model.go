package player

// Player is a tournament participant whose goals define the topscorer ranking.
type Player struct {
	ID      string
	Name    string
	Country string
	Goals   int
}
