package entity

type Player struct {
	Name string `json:"name"`
	Sign Sign   `json:"sign"`
}
