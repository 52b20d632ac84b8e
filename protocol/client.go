package protocol

//input structs coming in from the client.

type Hello struct {
	Name string `json:"name"`
}

// PlayerInfo is the player sub-object the server offers in welcome and the
// client confirms in gotit.
type PlayerInfo struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`
}

type Input struct {
	Ax   float64 `json:"ax"`  // -1..1 movement X
	Ay   float64 `json:"ay"`  // -1..1 movement Y
	Aim  float64 `json:"aim"` // turret angle, radians
	Fire bool    `json:"fire,omitempty"`
}

type Resize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
